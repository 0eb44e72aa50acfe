// Command breaktimectl sends one command to the break reminder daemon.
//
// Usage:
//
//	breaktimectl break            Start a break now
//	breaktimectl set <minutes>    Set the work interval
//	breaktimectl reset            Restore the default work interval
//	breaktimectl get [--minutes]  Print the time until the next break
//	breaktimectl skip             End the current break
//	breaktimectl -interactive     Run a command prompt instead
//
// With --minutes, get prints whole minutes only ("28m"), the format
// status bar widgets expect.
//
// Misuse (missing, extra, or unrecognized arguments) prints a usage
// message and exits cleanly; only a failed exchange with the daemon is
// an error.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/wlbreaktime/breaktime-go/pkg/client"
)

const usage = `usage: breaktimectl break|set|reset|get|skip

  break            start a break now
  set <minutes>    set the work interval (1-65535)
  reset            restore the default work interval
  get [--minutes]  print the time until the next break
  skip             end the current break
`

var flags struct {
	runtimeDir  string
	interactive bool
}

func init() {
	flag.StringVar(&flags.runtimeDir, "runtime-dir", "", "Socket directory (default $XDG_RUNTIME_DIR)")
	flag.BoolVar(&flags.interactive, "interactive", false, "Run a command prompt instead of a single command")
}

func main() {
	flag.Parse()

	if flags.interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Print(usage)
		return
	}

	// Arguments are validated before the socket is bound so that misuse
	// never leaves a socket file behind.
	verb := args[0]
	switch verb {
	case "set":
		if len(args) != 2 {
			fmt.Println("set needs exactly one argument, the minutes to set the interval to")
			return
		}
		if _, err := parseMinutesArg(args[1]); err != nil {
			fmt.Println(err)
			return
		}
	case "get":
		if len(args) > 2 || (len(args) == 2 && args[1] != "--minutes") {
			fmt.Println("usage: breaktimectl get [--minutes]")
			return
		}
	case "break", "reset", "skip":
		if len(args) != 1 {
			fmt.Printf("%s does not take arguments\n", verb)
			return
		}
	default:
		fmt.Print(usage)
		return
	}

	if err := runCommand(args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runCommand(args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()
	return dispatch(c, args, os.Stdout)
}

// dispatch runs one pre-validated command against the daemon and writes
// the human-readable result to out.
func dispatch(c *client.Client, args []string, out io.Writer) error {
	switch args[0] {
	case "break":
		return c.Break()
	case "skip":
		return c.Skip()
	case "set":
		minutes, err := parseMinutesArg(args[1])
		if err != nil {
			return err
		}
		if err := c.Set(minutes); err != nil {
			return err
		}
		fmt.Fprintf(out, "Remaining time set to %d minutes!\n", minutes)
		return nil
	case "get":
		short := len(args) == 2 && args[1] == "--minutes"
		seconds, err := c.Get()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, client.FormatRemaining(seconds, short))
		return nil
	case "reset":
		seconds, err := c.Reset()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Timer reset, next break in %d seconds!\n", seconds)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func parseMinutesArg(s string) (uint16, error) {
	minutes, err := strconv.ParseUint(s, 10, 16)
	if err != nil || minutes == 0 {
		return 0, fmt.Errorf("%q is not a valid number of minutes (1-65535)", s)
	}
	return uint16(minutes), nil
}

func newClient() (*client.Client, error) {
	dir := flags.runtimeDir
	if dir == "" {
		dir = os.Getenv("XDG_RUNTIME_DIR")
	}
	if dir == "" {
		return nil, errors.New("XDG_RUNTIME_DIR is not set and -runtime-dir was not given")
	}
	return client.New(dir)
}

// runInteractive reads commands from a prompt. One reply socket is bound
// for the whole session; commands address the daemon socket by path on
// every exchange, so a daemon restart between commands is harmless.
func runInteractive() error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "breaktime> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stdout(), "Commands: break, set <minutes>, reset, get [--minutes], skip, quit")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}

		args := strings.Fields(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprint(rl.Stdout(), usage)
			continue
		}

		if err := interactiveCommand(c, args, rl.Stdout()); err != nil {
			fmt.Fprintln(rl.Stderr(), "Error:", err)
		}
	}
}

func interactiveCommand(c *client.Client, args []string, out io.Writer) error {
	switch args[0] {
	case "break", "reset", "skip", "get", "set":
	default:
		return fmt.Errorf("unknown command %q, try help", args[0])
	}
	if args[0] == "set" {
		if len(args) != 2 {
			return errors.New("set needs exactly one argument")
		}
		if _, err := parseMinutesArg(args[1]); err != nil {
			return err
		}
	}
	return dispatch(c, args, out)
}
