// Command synchro-log is a tool for viewing and analyzing stream capture files.
//
// Capture files are written by synchro-stream when run with the -protocol-log
// flag. Each event records a chunk read from the resource, a decoded frame,
// a client state change, a connection control action, or an error.
//
// Usage:
//
//	synchro-log <command> [flags] <file.slog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSON or CSV format
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View all events
//	synchro-log view shelby.slog
//
//	# View only decoded frames
//	synchro-log view --layer codec shelby.slog
//
//	# Export to CSV
//	synchro-log export --format csv -o shelby.csv shelby.slog
//
//	# Keep one client's state changes
//	synchro-log filter --stream-id 6f1c2d3e-... --category state -o states.slog shelby.slog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gridstream/synchro-go/cmd/synchro-log/commands"
)

const usage = `synchro-log - Synchrophasor Stream Capture Analyzer

Usage:
  synchro-log <command> [flags] <file.slog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSON or CSV format
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file

Use "synchro-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// newFlagSet builds a subcommand flag set with a usage banner.
func newFlagSet(name, synopsis, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "synchro-log %s - %s\n\nUsage:\n  synchro-log %s %s\n\nFlags:\n", name, synopsis, name, args)
		fs.PrintDefaults()
	}
	return fs
}

// pathArg returns the single positional capture file argument.
func pathArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := newFlagSet("view", "View capture file in human-readable format", "[flags] <file.slog>")
	layer := fs.String("layer", "", "Filter by layer (transport, codec, client)")
	category := fs.String("category", "", "Filter by category (data, control, state, error)")
	source := fs.String("source", "", "Filter by resource")
	path := pathArg(fs, args)

	filter := commands.ViewFilter{Source: *source}
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export capture file to JSON or CSV format", "[flags] <file.slog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := pathArg(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter capture file and write to new file", "[flags] <file.slog>")
	output := fs.String("o", "", "Output file (required)")
	streamID := fs.String("stream-id", "", "Filter by stream ID")
	source := fs.String("source", "", "Filter by resource")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (transport, codec, client)")
	category := fs.String("category", "", "Filter by category (data, control, state, error)")
	path := pathArg(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	count, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		StreamID:  *streamID,
		Source:    *source,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Category:  *category,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the capture file", "<file.slog>")
	path := pathArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
