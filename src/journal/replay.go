package journal

import (
	"fmt"
	"io"

	"github.com/danmuck/procsim/src/sim"
)

// Commands extracts the input lines that produced events, in order. The
// terminating HALT is included when the run ended on one.
func Commands(events []sim.Event) []string {
	var lines []string
	for _, e := range events {
		switch e.Kind {
		case sim.EventAccepted, sim.EventRejected:
			lines = append(lines, e.Line)
		case sim.EventHalted:
			if e.Line != "" {
				lines = append(lines, e.Line)
			}
		}
	}
	return lines
}

// Replay feeds the recorded commands through a fresh simulation built from h
// and returns the events it produced. The transcript goes to out.
func Replay(h Header, events []sim.Event, out io.Writer) ([]sim.Event, error) {
	s, err := sim.New(h.Config(), out)
	if err != nil {
		return nil, fmt.Errorf("rebuild simulation: %w", err)
	}
	var replayed []sim.Event
	s.AddObserver(sim.ObserverFunc(func(e sim.Event) {
		replayed = append(replayed, e)
	}))

	for _, line := range Commands(events) {
		if err := s.Step(line); err != nil {
			return replayed, err
		}
	}
	if s.State() == sim.Running {
		if err := s.Halt(""); err != nil {
			return replayed, err
		}
	}
	return replayed, nil
}

// Diverges returns the index of the first event that differs between a and
// b, or -1 when the streams are identical.
func Diverges(a, b []sim.Event) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

