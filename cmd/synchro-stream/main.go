// Command synchro-stream replays a synchrophasor capture file through a
// stream client and prints the decoded measurements.
//
// Usage:
//
//	synchro-stream [flags]
//
// Flags:
//
//	-source string        Capture file to read
//	-conn string          Connection string (overrides the resource flags)
//	-config string        YAML profile; flags set on the command line win
//	-station string       Measurement source name (default "pmu")
//	-chunk-size int       Bytes read per chunk (default 4096)
//	-offset int           Starting offset in the capture file
//	-max-attempts int     Open attempts, -1 for unlimited (default 3)
//	-interval duration    Delay between passes, 0 for a single pass
//	-on-demand            Read only when asked (interactive mode)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  Write a capture event log to this file
//	-interactive          Start the interactive shell
//
// Examples:
//
//	# Decode a capture file once
//	synchro-stream -source shelby.bin
//
//	# Re-read the file every second and record a capture log
//	synchro-stream -source shelby.bin -interval 1s -protocol-log shelby.slog
//
//	# Drive the client by hand
//	synchro-stream -config pmu.yaml -interactive
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var (
	flags      = DefaultProfile()
	configFile string
)

func init() {
	flag.StringVar(&configFile, "config", "", "YAML profile path")
	flag.StringVar(&flags.Source, "source", "", "Capture file to read")
	flag.StringVar(&flags.ConnectionString, "conn", "", "Connection string (overrides the resource flags)")
	flag.StringVar(&flags.Station, "station", flags.Station, "Measurement source name")
	flag.IntVar(&flags.ChunkSize, "chunk-size", flags.ChunkSize, "Bytes read per chunk")
	flag.Int64Var(&flags.StartingOffset, "offset", 0, "Starting offset in the capture file")
	flag.IntVar(&flags.MaxAttempts, "max-attempts", flags.MaxAttempts, "Open attempts, -1 for unlimited")
	flag.DurationVar(&flags.ReceiveInterval, "interval", 0, "Delay between passes, 0 for a single pass")
	flag.BoolVar(&flags.ReceiveOnDemand, "on-demand", false, "Read only when asked (interactive mode)")
	flag.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&flags.ProtocolLog, "protocol-log", "", "Write a capture event log to this file")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Start the interactive shell")
}

func main() {
	flag.Parse()

	profile := DefaultProfile()
	if configFile != "" {
		var err error
		if profile, err = LoadProfile(configFile); err != nil {
			log.Fatalf("Failed to load profile: %v", err)
		}
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	mergeFlags(&profile, flags, set)

	setupLogging(profile.LogLevel)

	if err := profile.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if profile.Interactive {
		runInteractive(ctx, profile)
		return
	}

	session, err := NewSession(profile, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer session.Close()

	if err := session.Client().Connect(ctx); err != nil {
		log.Fatalf("Connect failed: %v", err)
	}

	// A single pass ends the run; with an interval keep reading until
	// interrupted.
	single := profile.ReceiveInterval == 0 && !profile.ReceiveOnDemand
	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down...")
			return
		case <-session.Finished():
			return
		case <-session.EndOfStream():
			if single {
				return
			}
		}
	}
}

func runInteractive(ctx context.Context, profile Profile) {
	session, err := NewSession(profile, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer session.Close()

	shell, err := NewShell(session)
	if err != nil {
		log.Fatalf("Failed to start shell: %v", err)
	}
	session.out = shell.Stdout()
	log.SetOutput(shell.Stdout())

	shell.Run(ctx)
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "warn":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelError)
	}
}
