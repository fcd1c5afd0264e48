// Package rendezvous pairs a SEND with the RECV waiting at the front of its
// counterpart's queue (and the reverse).
//
// Two policies are supported. PolicyLegacy keeps the classroom simulator's
// matching rules: a SEND looks for its partner in the queue of process
// <payload>, the drain guard compares the kind with the counterpart as typed,
// and a failed match blocks whichever process holds the driver's turn.
// Counterpart ids are 0-based under both policies, so a SEND reaches the
// channel addressed to the process the user named. PolicyStrict looks for a SEND's partner in the queue of its peer and
// blocks the operation's owner.
package rendezvous

import (
	"fmt"
	"strings"

	"github.com/danmuck/procsim/src/operation"
	"github.com/danmuck/procsim/src/queues"
	logs "github.com/danmuck/smplog"
)

type Policy string

const (
	PolicyLegacy Policy = "legacy"
	PolicyStrict Policy = "strict"
)

// ParsePolicy accepts a policy name in any case.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLegacy, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown match policy %q (want %q or %q)", s, PolicyLegacy, PolicyStrict)
	}
}

// Match records a successful rendezvous. Turn is the process whose turn it
// was; Target is the process whose queue front was consumed.
type Match struct {
	Turn    int
	Target  int
	Op      operation.Operation
	Partner operation.Operation
}

func (m Match) String() string {
	return fmt.Sprintf("Process %d matched with Process %d", m.Turn+1, m.Target+1)
}

type Engine struct {
	queues *queues.Queues
	policy Policy
}

func NewEngine(q *queues.Queues, policy Policy) *Engine {
	if policy == "" {
		policy = PolicyLegacy
	}
	return &Engine{queues: q, policy: policy}
}

func (e *Engine) Policy() Policy { return e.policy }

// Target returns the process whose queue front op is matched against.
func (e *Engine) Target(op operation.Operation) int {
	if op.Kind == operation.Send && e.policy == PolicyLegacy {
		return op.Payload - 1
	}
	return op.Peer
}

// Pairs reports whether op and the target's front entry form a rendezvous.
func Pairs(op, front operation.Operation) bool {
	if op.Payload != front.Payload {
		return false
	}
	switch op.Kind {
	case operation.Send:
		return front.Kind == operation.Recv && front.Owner == op.Peer
	case operation.Recv:
		return front.Kind == operation.Send && front.Peer == op.Owner
	}
	return false
}

// AttemptMatch tries to resolve op against its target's queue front. On a
// match the front entry is removed. Otherwise a process is marked blocked and
// the returned pid names it.
func (e *Engine) AttemptMatch(op operation.Operation, turn int) (Match, int, bool) {
	target := e.Target(op)
	if front, ok := e.queues.Front(target); ok && Pairs(op, front) {
		e.queues.PopFront(target)
		m := Match{Turn: turn, Target: target, Op: op, Partner: front}
		logs.Debugf("AttemptMatch(%s): %s", op.Line(), m)
		return m, -1, true
	}

	blocked := turn
	if e.policy == PolicyStrict {
		blocked = op.Owner
	}
	e.queues.SetBlocked(blocked, true)
	logs.Debugf("AttemptMatch(%s): no partner in process %d, process %d blocked", op.Line(), target+1, blocked+1)
	return Match{}, blocked, false
}

// Drainable reports whether the driver keeps draining a queue whose front is
// op. The legacy rule intentionally compares the numeric kind against the
// counterpart as it was typed (op.Peer+1), not the 0-based id; the strict rule
// stops at a self-addressed operation.
func (e *Engine) Drainable(op operation.Operation) bool {
	if e.policy == PolicyStrict {
		return op.Peer != op.Owner
	}
	return int(op.Kind) != op.Peer+1
}
