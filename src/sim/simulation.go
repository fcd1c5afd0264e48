// Package sim drives the round-robin simulation: it feeds command lines into
// the channel and process queues, renders state after every command and
// drains the queue of the process holding the turn.
package sim

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/procsim/src/channel"
	"github.com/danmuck/procsim/src/operation"
	"github.com/danmuck/procsim/src/queues"
	"github.com/danmuck/procsim/src/rendezvous"
	logs "github.com/danmuck/smplog"
)

const HaltBanner = "All producers and consumers have finished. Program terminated."

type State int

const (
	Running State = iota
	Halted
)

func (s State) String() string {
	if s == Halted {
		return "HALTED"
	}
	return "RUNNING"
}

// Simulation owns all state for one run. It is not safe for concurrent use;
// the model is a single sequential driver.
type Simulation struct {
	cfg       Config
	parser    operation.Parser
	queues    *queues.Queues
	channel   *channel.Channel
	engine    *rendezvous.Engine
	out       io.Writer
	observers []Observer

	current  int
	commands int
	seq      int
	state    State
	err      error
}

// New builds a simulation that writes its transcript to out.
func New(cfg Config, out io.Writer) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	q := queues.New(cfg.Processes)
	return &Simulation{
		cfg:     cfg,
		parser:  operation.NewParser(cfg.Processes),
		queues:  q,
		channel: channel.New(cfg.Slots()),
		engine:  rendezvous.NewEngine(q, cfg.Policy),
		out:     out,
		state:   Running,
	}, nil
}

// AddObserver registers o to receive every subsequent event.
func (s *Simulation) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Simulation) Config() Config { return s.cfg }
func (s *Simulation) State() State { return s.state }
func (s *Simulation) Current() int { return s.current }
func (s *Simulation) Commands() int { return s.commands }
func (s *Simulation) Queues() *queues.Queues { return s.queues }
func (s *Simulation) Channel() *channel.Channel { return s.channel }

// Step processes one input line. Rejected commands are logged and leave the
// state untouched; the returned error is only set when writing the
// transcript fails.
func (s *Simulation) Step(line string) error {
	if s.state == Halted {
		return nil
	}
	if operation.IsHalt(line) {
		return s.Halt(operation.HaltCommand)
	}

	line = strings.TrimRight(line, "\r\n")
	op, err := s.parser.Parse(line)
	if err != nil {
		s.reject(line, err)
		return s.err
	}
	if s.queues.Full(op.Owner) {
		s.reject(line, fmt.Errorf("process %d: %w", op.Owner+1, queues.ErrCapacityExceeded))
		return s.err
	}

	switch op.Kind {
	case operation.Send:
		if err := s.channel.Send(op.Owner, op.Peer, op.Payload); err != nil {
			s.reject(line, err)
			return s.err
		}
	case operation.Recv:
		msg, err := s.channel.Receive(op.Owner)
		if errors.Is(err, channel.ErrNoMessage) {
			logs.Debugf("Step(%s): %v for process %d", line, err, op.Owner+1)
		} else {
			s.printf("Process %d received message from Process %d with value %d\n", msg.Receiver+1, msg.Sender+1, msg.Value)
			s.emit(Event{Kind: EventDelivered, Process: msg.Receiver, Peer: msg.Sender, Value: msg.Value})
		}
	}

	if err := s.queues.Enqueue(op.Owner, op); err != nil {
		return fmt.Errorf("enqueue %s: %w", line, err)
	}
	s.emit(Event{Kind: EventAccepted, Process: op.Owner, Peer: op.Peer, Value: op.Payload, Line: line})

	s.printf("[%02d] %s\n", s.current+1, s.renderQueues())
	s.printf("%s\n", s.renderChannel())

	s.drain()
	s.queues.SetBlocked(s.current, false)
	s.current = (s.current + 1) % s.cfg.Processes
	s.commands++
	return s.err
}

// drain resolves the turn process's queue front-first until the policy's
// drain guard stops it or the queue empties.
func (s *Simulation) drain() {
	for {
		front, ok := s.queues.Front(s.current)
		if !ok || !s.engine.Drainable(front) {
			return
		}
		s.queues.PopFront(s.current)
		m, blocked, matched := s.engine.AttemptMatch(front, s.current)
		if matched {
			s.printf("%s\n", m)
			s.emit(Event{Kind: EventMatched, Process: m.Target, Peer: m.Turn, Value: front.Payload})
			continue
		}
		s.emit(Event{Kind: EventBlocked, Process: blocked, Peer: s.engine.Target(front), Value: front.Payload})
	}
}

// Halt prints the termination banner and the final channel snapshot. Later
// calls are no-ops.
func (s *Simulation) Halt(line string) error {
	if s.state == Halted {
		return s.err
	}
	s.state = Halted
	s.printf("%s\n", HaltBanner)
	s.printf("%s\n", s.renderChannel())
	s.emit(Event{Kind: EventHalted, Line: line})
	return s.err
}

func (s *Simulation) reject(line string, err error) {
	logs.Warnf("rejected command %q: %v", line, err)
	s.emit(Event{Kind: EventRejected, Line: line, Reason: err.Error()})
}

func (s *Simulation) emit(e Event) {
	e.Seq = s.seq
	e.Turn = s.current
	e.Pending = s.channel.Len()
	s.seq++
	for _, o := range s.observers {
		o.Observe(e)
	}
}

func (s *Simulation) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.out, format, args...); err != nil {
		s.err = fmt.Errorf("write transcript: %w", err)
	}
}
