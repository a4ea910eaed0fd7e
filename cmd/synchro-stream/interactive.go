package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/gridstream/synchro-go/pkg/stream"
)

// Shell drives a session from an interactive command line.
type Shell struct {
	session *Session
	rl      *readline.Instance
}

// NewShell creates a shell for s.
func NewShell(s *Session) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "stream> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{session: s, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (sh *Shell) Stdout() io.Writer {
	return sh.rl.Stdout()
}

// Run reads commands until exit, EOF or ctx is done.
func (sh *Shell) Run(ctx context.Context) {
	defer sh.rl.Close()

	sh.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := sh.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(sh.rl.Stdout(), "Exiting...")
			return
		}

		if !sh.execute(ctx, line) {
			fmt.Fprintln(sh.rl.Stdout(), "Exiting...")
			return
		}
	}
}

// execute runs one command line and reports whether the shell should keep
// running.
func (sh *Shell) execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	out := sh.rl.Stdout()
	c := sh.session.Client()

	switch cmd {
	case "help", "?":
		sh.printHelp()

	case "connect", "c":
		if err := c.Connect(ctx); err != nil {
			fmt.Fprintf(out, "Connect failed: %v\n", err)
		}

	case "disconnect", "d":
		c.Disconnect()

	case "cancel":
		c.CancelConnect()

	case "receive", "r":
		if !c.ReceiveData() {
			fmt.Fprintln(out, "Not accepted (not connected, not on-demand, or a pass is running)")
		}

	case "interval":
		sh.cmdInterval(args)

	case "ondemand":
		sh.cmdOnDemand(args)

	case "status", "s":
		sh.printStatus()

	case "exit", "quit", "q":
		return false

	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (sh *Shell) cmdInterval(args []string) {
	out := sh.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: interval <ms>|continuous")
		return
	}

	interval := stream.Continuous
	if !strings.EqualFold(args[0], "continuous") {
		ms, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(out, "Invalid interval: %s\n", args[0])
			return
		}
		interval = time.Duration(ms) * time.Millisecond
		if ms == int(stream.Continuous) {
			interval = stream.Continuous
		}
	}
	if err := sh.session.Client().SetReceiveInterval(interval); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(out, "OK")
}

func (sh *Shell) cmdOnDemand(args []string) {
	out := sh.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: ondemand <true|false>")
		return
	}
	v, err := strconv.ParseBool(args[0])
	if err != nil {
		fmt.Fprintf(out, "Invalid value: %s\n", args[0])
		return
	}
	sh.session.Client().SetReceiveOnDemand(v)
	fmt.Fprintln(out, "OK")
}

func (sh *Shell) printStatus() {
	out := sh.rl.Stdout()
	c := sh.session.Client()
	stats := sh.session.Parser().Stats()

	interval := "continuous"
	if d := c.ReceiveInterval(); d != stream.Continuous {
		interval = d.String()
	}

	fmt.Fprintf(out, "Stream:    %s\n", c.ID())
	fmt.Fprintf(out, "State:     %s\n", c.State())
	fmt.Fprintf(out, "Source:    %s\n", c.Source())
	fmt.Fprintf(out, "Attempts:  %d\n", c.Attempts())
	fmt.Fprintf(out, "Interval:  %s\n", interval)
	fmt.Fprintf(out, "On demand: %t\n", c.ReceiveOnDemand())
	fmt.Fprintf(out, "Frames:    %d (%d parse errors, %d bytes dropped)\n",
		stats.Frames, stats.ParseErrors, stats.BytesDropped)
}

func (sh *Shell) printHelp() {
	fmt.Fprintln(sh.rl.Stdout(), `
Commands:
  connect, c            Start a connection cycle
  disconnect, d         Close the connection
  cancel                Cancel a connection cycle in progress
  receive, r            Run one pass (on-demand mode)
  interval <ms>         Set the receive interval (-1 or continuous for one pass)
  ondemand <true|false> Select on-demand reception
  status, s             Show client state and decoder counters
  help, ?               Show this help
  exit, quit, q         Exit`)
}
