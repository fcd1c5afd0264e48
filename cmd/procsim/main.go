package main

import (
	"fmt"
	"io"
	"os"

	"github.com/danmuck/procsim/cmd/internal/logcfg"
	"github.com/danmuck/procsim/src/journal"
	"github.com/danmuck/procsim/src/metrics"
	"github.com/danmuck/procsim/src/sim"
	logs "github.com/danmuck/smplog"
)

func main() {
	cfg, err := parseCLI(os.Args[1:], defaultRuntimeConfig)
	if err != nil {
		fmt.Printf("Error: %v\n\n", err)
		printUsage(cfg)
		os.Exit(1)
	}

	logs.Configure(logcfg.Load(cfg.LogConfig))

	simCfg, err := cfg.simConfig()
	if err != nil {
		logs.Fatalf(err, "Failed to load simulation config")
	}

	if err := run(cfg, simCfg, os.Stdin, os.Stdout); err != nil {
		logs.Fatalf(err, "Simulation failed")
	}
}

// run wires the optional journal, metrics and event logging around one
// simulation and drives it to completion.
func run(cfg RuntimeConfig, simCfg sim.Config, stdin io.Reader, stdout io.Writer) error {
	input := stdin
	if cfg.ScriptPath != "" {
		f, err := os.Open(cfg.ScriptPath)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		input = f
	}

	s, err := sim.New(simCfg, stdout)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printRuntimeSummary(cfg, simCfg)
		s.AddObserver(sim.ObserverFunc(logEvent))
	}

	var jw *journal.Writer
	if cfg.JournalPath != "" {
		f, err := os.Create(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
		defer f.Close()
		jw, err = journal.NewWriter(f, journal.NewHeader(simCfg))
		if err != nil {
			return fmt.Errorf("start journal: %w", err)
		}
		s.AddObserver(jw)
	}

	var m *metrics.Metrics
	if cfg.Stats {
		m = metrics.New()
		s.AddObserver(m)
	}

	if err := s.Run(input); err != nil {
		return err
	}

	if jw != nil {
		if err := jw.Err(); err != nil {
			logs.Warnf("journal %s incomplete: %v", cfg.JournalPath, err)
		} else {
			logs.Debugf("journal %s: %d events", cfg.JournalPath, jw.Count())
		}
	}

	if m != nil {
		if err := printStats(m); err != nil {
			logs.Warnf("stats unavailable: %v", err)
		}
	}
	return nil
}

func printRuntimeSummary(cfg RuntimeConfig, simCfg sim.Config) {
	logs.Printf("\n")
	logs.Field("Processes", simCfg.Processes)
	logs.Printf("\n")
	logs.Field("Channel slots", simCfg.Slots())
	logs.Printf("\n")
	logs.Field("Match policy", simCfg.Policy)
	logs.Printf("\n")
	logs.Field("Prompt", simCfg.Prompt)
	logs.Printf("\n")
	if cfg.ScriptPath != "" {
		logs.Field("Script", cfg.ScriptPath)
		logs.Printf("\n")
	}
	if cfg.JournalPath != "" {
		logs.Field("Journal", cfg.JournalPath)
		logs.Printf("\n")
	}
}

func logEvent(e sim.Event) {
	switch e.Kind {
	case sim.EventAccepted:
		logs.Infof("#%d turn=%d accepted %q", e.Seq, e.Turn+1, e.Line)
	case sim.EventRejected:
		logs.Infof("#%d turn=%d rejected %q: %s", e.Seq, e.Turn+1, e.Line, e.Reason)
	case sim.EventDelivered:
		logs.Infof("#%d turn=%d delivered %d from P%d to P%d", e.Seq, e.Turn+1, e.Value, e.Peer+1, e.Process+1)
	case sim.EventMatched:
		logs.Infof("#%d turn=%d matched P%d value %d", e.Seq, e.Turn+1, e.Process+1, e.Value)
	case sim.EventBlocked:
		logs.Infof("#%d turn=%d P%d blocked waiting on P%d", e.Seq, e.Turn+1, e.Process+1, e.Peer+1)
	case sim.EventHalted:
		logs.Infof("#%d halted, %d message(s) undelivered", e.Seq, e.Pending)
	}
}
