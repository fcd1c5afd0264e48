package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danmuck/procsim/cmd/internal/logcfg"
	"github.com/danmuck/procsim/src/journal"
	"github.com/danmuck/procsim/src/sim"
	logs "github.com/danmuck/smplog"
)

type command struct {
	action     string
	path       string
	transcript bool
}

const TRANSCRIPT_FLAG = "--transcript"

func parseArgs(args []string) (command, error) {
	var cmd command
	for _, arg := range args {
		switch {
		case arg == TRANSCRIPT_FLAG:
			cmd.transcript = true
		case cmd.action == "":
			if arg != "dump" && arg != "replay" {
				return cmd, fmt.Errorf("unknown action %q", arg)
			}
			cmd.action = arg
		case cmd.path == "":
			cmd.path = arg
		default:
			return cmd, fmt.Errorf("unexpected argument %q", arg)
		}
	}
	if cmd.action == "" || cmd.path == "" {
		return cmd, fmt.Errorf("need an action and a journal path")
	}
	if cmd.transcript && cmd.action != "replay" {
		return cmd, fmt.Errorf("%s only applies to replay", TRANSCRIPT_FLAG)
	}
	return cmd, nil
}

// errDiverged reports a replay whose event stream differs from the journal.
var errDiverged = errors.New("replay diverged")

func main() {
	cmd, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Printf("Error: %v\n\n", err)
		fmt.Printf("Usage: journal dump PATH\n       journal replay PATH [%s]\n", TRANSCRIPT_FLAG)
		os.Exit(1)
	}

	logs.Configure(logcfg.Load(""))

	if err := run(cmd, os.Stdout); err != nil {
		if errors.Is(err, errDiverged) {
			os.Exit(1)
		}
		logs.Fatalf(err, "journal %s failed", cmd.action)
	}
}

// run executes one dump or replay. A replay transcript, when requested, is
// written to stdout.
func run(cmd command, stdout io.Writer) error {
	f, err := os.Open(cmd.path)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", cmd.path, err)
	}
	defer f.Close()

	header, events, err := journal.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read journal %s: %w", cmd.path, err)
	}

	printHeader(header, len(events))

	switch cmd.action {
	case "dump":
		for _, e := range events {
			logs.Dataf("%s\n", formatEvent(e))
		}
	case "replay":
		out := io.Discard
		if cmd.transcript {
			out = stdout
		}
		replayed, err := journal.Replay(header, events, out)
		if err != nil {
			return err
		}
		if at := journal.Diverges(events, replayed); at >= 0 {
			logs.StatusWarn(fmt.Sprintf("Replay diverged at event %d", at))
			logs.Printf("\n")
			if at < len(events) {
				logs.DataKV("recorded", formatEvent(events[at]))
			}
			if at < len(replayed) {
				logs.DataKV("replayed", formatEvent(replayed[at]))
			}
			return fmt.Errorf("event %d: %w", at, errDiverged)
		}
		logs.StatusInfo(fmt.Sprintf("Replay matched all %d events.", len(events)))
		logs.Printf("\n")
	}
	return nil
}

func printHeader(h journal.Header, events int) {
	logs.Titlef("\nJournal %s\n", h.RunID)
	logs.DataKV("Started at", h.StartedAt.Format(time.RFC3339))
	logs.DataKV("Processes", fmt.Sprint(h.Processes))
	logs.DataKV("Channel slots", fmt.Sprint(h.Slots))
	logs.DataKV("Policy", string(h.Policy))
	logs.DataKV("Events", fmt.Sprint(events))
}

func formatEvent(e sim.Event) string {
	head := fmt.Sprintf("%4d [%02d] %-9s", e.Seq, e.Turn+1, e.Kind)
	switch e.Kind {
	case sim.EventAccepted:
		return fmt.Sprintf("%s %s  pending=%d", head, e.Line, e.Pending)
	case sim.EventRejected:
		return fmt.Sprintf("%s %q  %s", head, e.Line, e.Reason)
	case sim.EventDelivered:
		return fmt.Sprintf("%s P%d <- P%d value=%d  pending=%d", head, e.Process+1, e.Peer+1, e.Value, e.Pending)
	case sim.EventMatched:
		return fmt.Sprintf("%s P%d with P%d value=%d", head, e.Peer+1, e.Process+1, e.Value)
	case sim.EventBlocked:
		return fmt.Sprintf("%s P%d (target P%d) value=%d", head, e.Process+1, e.Peer+1, e.Value)
	case sim.EventHalted:
		return fmt.Sprintf("%s %q  pending=%d", head, e.Line, e.Pending)
	default:
		return head
	}
}
