package operation

import "fmt"

// Kind distinguishes the two operations a process can issue.
type Kind int

const (
	Send Kind = 0
	Recv Kind = 1
)

func (k Kind) String() string {
	switch k {
	case Send:
		return "SEND"
	case Recv:
		return "RECV"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// Operation is one parsed command. Process ids are 0-based.
//
// Payload is the value carried by the operation. Peer names the receiver
// for a SEND and the expected sender for a RECV.
type Operation struct {
	Owner   int
	Kind    Kind
	Payload int
	Peer    int
}

// String renders the operation the way it appears inside a queue snapshot,
// with 1-based ids and a trailing space.
func (op Operation) String() string {
	return fmt.Sprintf("Proc%d %s %d %d ", op.Owner+1, op.Kind, op.Payload, op.Peer+1)
}

// Line renders the operation back into command form.
func (op Operation) Line() string {
	return fmt.Sprintf("Proc%d %d %d %d", op.Owner+1, int(op.Kind), op.Payload, op.Peer+1)
}
