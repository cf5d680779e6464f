// Command linkkit-cli is an interactive command console: it reads lines
// from stdin (or a pseudo-terminal), matches them against a small set of
// known command formats with climatch, driving a hamlib rig when one is
// configured, and can write a timestamped transcript of every command and
// its result.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"

	"github.com/kc9wav/linkkit/internal/climatch"
	"github.com/kc9wav/linkkit/internal/linklog"
	"github.com/kc9wav/linkkit/internal/rigctl"
)

// rigCommands is the command table rigctl.Dispatcher matches against,
// covering the rig control surface: PTT and frequency.
func rigCommands() []rigctl.Command {
	return []rigctl.Command{
		{
			Format:   "ptt $n on",
			ParamMax: 1,
			Run: func(r *rigctl.Rig, params []string) error {
				return r.SetPTT(true)
			},
		},
		{
			Format:   "ptt $n off",
			ParamMax: 1,
			Run: func(r *rigctl.Rig, params []string) error {
				return r.SetPTT(false)
			},
		},
		{
			Format:   "rig freq $hz",
			ParamMax: 1,
			Run: func(r *rigctl.Rig, params []string) error {
				hz, err := strconv.ParseFloat(params[0], 64)
				if err != nil {
					return fmt.Errorf("bad frequency %q: %w", params[0], err)
				}
				return r.SetFrequency(hz)
			},
		},
	}
}

func main() {
	transcriptPath := pflag.StringP("transcript", "t", "", "Append a timestamped transcript of the session to this file.")
	ptyLink := pflag.StringP("pty-link", "p", "", "Create a pseudo-terminal for console access and symlink it at this path.")
	rigModel := pflag.IntP("rig-model", "m", 0, "Hamlib rig model number to open for PTT/frequency commands (0 disables rig control).")
	rigDevice := pflag.StringP("rig-device", "d", "", "Serial device the rig is attached to.")
	rigBaud := pflag.IntP("rig-baud", "b", 9600, "Rig serial baud rate.")
	pflag.Parse()

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	if *ptyLink != "" {
		master, err := openConsolePTY(*ptyLink)
		if err != nil {
			linklog.Error("could not open console pty", "err", err)
			os.Exit(1)
		}
		defer master.Close()
		in, out = master, master
	}

	var transcript io.WriteCloser
	if *transcriptPath != "" {
		f, err := os.OpenFile(*transcriptPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			linklog.Error("could not open transcript file", "file", *transcriptPath, "err", err)
			os.Exit(1)
		}
		defer f.Close()
		transcript = f
	}

	timestamp, err := strftime.New("%Y-%m-%d %H:%M:%S")
	if err != nil {
		linklog.Error("bad transcript timestamp format", "err", err)
		os.Exit(1)
	}

	var dispatcher *rigctl.Dispatcher
	if *rigModel != 0 {
		rig, err := rigctl.Open(*rigModel, *rigDevice, *rigBaud)
		if err != nil {
			linklog.Error("could not open rig", "model", *rigModel, "device", *rigDevice, "err", err)
			os.Exit(1)
		}
		defer rig.Close()
		dispatcher = rigctl.NewDispatcher(rig, rigCommands())
	}

	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := scanner.Text() + "\n"
		result := dispatch(line, dispatcher)

		fmt.Fprintln(out, result)
		if transcript != nil {
			writeTranscriptLine(transcript, timestamp, line, result)
		}
		fmt.Fprint(out, "> ")
	}
}

// dispatch matches a console line first against the local, rig-independent
// commands (today just "status"), then against the rig command table when a
// rig is configured. The two tables share nothing but the climatch matcher
// underneath, which is why rigctl.Dispatcher stays in charge of its own
// command set rather than merging into one flat table.
func dispatch(line string, dispatcher *rigctl.Dispatcher) string {
	if _, ok := climatch.Match(line, "status", 0); ok {
		return "ok"
	}

	if dispatcher == nil {
		return "unrecognized command"
	}
	matched, err := dispatcher.Dispatch(line)
	if !matched {
		return "unrecognized command"
	}
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}

func writeTranscriptLine(w io.Writer, ts *strftime.Strftime, line, result string) {
	stamp := ts.FormatString(time.Now())
	fmt.Fprintf(w, "[%s] %s -> %s\n", stamp, line[:len(line)-1], result)
}
