package queues

import (
	"errors"
	"fmt"

	"github.com/danmuck/procsim/src/operation"
)

var (
	ErrCapacityExceeded = errors.New("process queue full")
	ErrNoProcess        = errors.New("no such process")
)

// queue holds a process's unresolved operations, oldest first.
type queue struct {
	ops     []operation.Operation
	blocked bool
}

// Queues is the set of per-process operation queues. Every queue holds at
// most as many entries as there are processes.
type Queues struct {
	queues   []queue
	capacity int
}

func New(processes int) *Queues {
	q := &Queues{
		queues:   make([]queue, processes),
		capacity: processes,
	}
	for i := range q.queues {
		q.queues[i].ops = make([]operation.Operation, 0, processes)
	}
	return q
}

func (q *Queues) Processes() int { return len(q.queues) }
func (q *Queues) Capacity() int { return q.capacity }

func (q *Queues) valid(pid int) bool {
	return pid >= 0 && pid < len(q.queues)
}

// Enqueue appends op to the tail of pid's queue.
func (q *Queues) Enqueue(pid int, op operation.Operation) error {
	if !q.valid(pid) {
		return fmt.Errorf("enqueue on process %d: %w", pid+1, ErrNoProcess)
	}
	if len(q.queues[pid].ops) >= q.capacity {
		return fmt.Errorf("enqueue on process %d: %w (%d entries)", pid+1, ErrCapacityExceeded, q.capacity)
	}
	q.queues[pid].ops = append(q.queues[pid].ops, op)
	return nil
}

// Full reports whether pid's queue has no room left. Unknown pids are full.
func (q *Queues) Full(pid int) bool {
	if !q.valid(pid) {
		return true
	}
	return len(q.queues[pid].ops) >= q.capacity
}

func (q *Queues) Front(pid int) (operation.Operation, bool) {
	if !q.valid(pid) || len(q.queues[pid].ops) == 0 {
		return operation.Operation{}, false
	}
	return q.queues[pid].ops[0], true
}

// PopFront removes the oldest entry and shifts the rest left.
func (q *Queues) PopFront(pid int) (operation.Operation, bool) {
	if !q.valid(pid) || len(q.queues[pid].ops) == 0 {
		return operation.Operation{}, false
	}
	ops := q.queues[pid].ops
	front := ops[0]
	copy(ops, ops[1:])
	q.queues[pid].ops = ops[:len(ops)-1]
	return front, true
}

func (q *Queues) Len(pid int) int {
	if !q.valid(pid) {
		return 0
	}
	return len(q.queues[pid].ops)
}

// Entries returns a copy of pid's queue, oldest first.
func (q *Queues) Entries(pid int) []operation.Operation {
	if !q.valid(pid) {
		return nil
	}
	return append([]operation.Operation(nil), q.queues[pid].ops...)
}

func (q *Queues) SetBlocked(pid int, blocked bool) {
	if q.valid(pid) {
		q.queues[pid].blocked = blocked
	}
}

func (q *Queues) Blocked(pid int) bool {
	return q.valid(pid) && q.queues[pid].blocked
}
