package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/procsim/src/journal"
	"github.com/danmuck/procsim/src/sim"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want command
	}{
		{name: "dump", args: []string{"dump", "run.journal"}, want: command{action: "dump", path: "run.journal"}},
		{name: "replay", args: []string{"replay", "run.journal"}, want: command{action: "replay", path: "run.journal"}},
		{name: "replay with transcript", args: []string{"--transcript", "replay", "x"}, want: command{action: "replay", path: "x", transcript: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseArgs(tc.args)
			if err != nil {
				t.Fatalf("parseArgs(%q) returned error: %v", tc.args, err)
			}
			if got != tc.want {
				t.Fatalf("parseArgs(%q) = %+v, want %+v", tc.args, got, tc.want)
			}
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"dump"},
		{"list", "x"},
		{"dump", "a", "b"},
		{"dump", "x", "--transcript"},
	} {
		if _, err := parseArgs(args); err == nil {
			t.Fatalf("parseArgs(%q) succeeded, want error", args)
		}
	}
}

func TestFormatEvent(t *testing.T) {
	got := formatEvent(sim.Event{Seq: 2, Kind: sim.EventDelivered, Turn: 1, Process: 1, Peer: 0, Value: 2})
	if !strings.Contains(got, "P2 <- P1 value=2") {
		t.Fatalf("formatEvent = %q", got)
	}
	if !strings.HasPrefix(got, "   2 [02] delivered") {
		t.Fatalf("formatEvent prefix = %q", got)
	}
}

func writeJournal(t *testing.T, script string, extra ...sim.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.journal")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create journal: %v", err)
	}
	defer f.Close()

	cfg := sim.DefaultConfig()
	cfg.Prompt = sim.PromptNever
	w, err := journal.NewWriter(f, journal.NewHeader(cfg))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if script != "" {
		var transcript bytes.Buffer
		s, err := sim.New(cfg, &transcript)
		if err != nil {
			t.Fatalf("sim.New() error = %v", err)
		}
		s.AddObserver(w)
		if err := s.Run(strings.NewReader(script)); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	for _, e := range extra {
		w.Observe(e)
	}
	if err := w.Err(); err != nil {
		t.Fatalf("journal writer error = %v", err)
	}
	return path
}

func TestRunReplay(t *testing.T) {
	matching := writeJournal(t, "Proc1 0 2 2\nProc2 1 2 1\nHALT\n")
	tampered := writeJournal(t, "", sim.Event{Kind: sim.EventAccepted, Line: "Proc1 0 2 2", Pending: 5})

	var stdout bytes.Buffer
	if err := run(command{action: "replay", path: matching, transcript: true}, &stdout); err != nil {
		t.Fatalf("run(replay matching) error = %v", err)
	}
	if !strings.Contains(stdout.String(), sim.HaltBanner) {
		t.Fatalf("replay transcript missing halt banner:\n%s", stdout.String())
	}

	err := run(command{action: "replay", path: tampered}, &stdout)
	if !errors.Is(err, errDiverged) {
		t.Fatalf("run(replay tampered) error = %v, want %v", err, errDiverged)
	}

	if err := run(command{action: "dump", path: matching}, &stdout); err != nil {
		t.Fatalf("run(dump) error = %v", err)
	}

	err = run(command{action: "dump", path: filepath.Join(t.TempDir(), "missing.journal")}, &stdout)
	if err == nil || errors.Is(err, errDiverged) {
		t.Fatalf("run(missing) error = %v, want open failure", err)
	}
}
