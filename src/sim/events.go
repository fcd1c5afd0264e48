package sim

type EventKind string

const (
	EventAccepted  EventKind = "accepted"
	EventRejected  EventKind = "rejected"
	EventDelivered EventKind = "delivered"
	EventMatched   EventKind = "matched"
	EventBlocked   EventKind = "blocked"
	EventHalted    EventKind = "halted"
)

// Event is one observable step of a run. Process ids are 0-based.
//
//	accepted:  Process=owner, Peer=counterpart, Value=payload, Line=command
//	rejected:  Line=command, Reason=error text
//	delivered: Process=receiver, Peer=sender, Value=payload
//	matched:   Process=target, Peer=turn, Value=payload
//	blocked:   Process=blocked pid, Peer=target, Value=payload
//	halted:    Line="HALT" or "" at end of input
type Event struct {
	Seq     int
	Kind    EventKind
	Turn    int
	Process int
	Peer    int
	Value   int
	Line    string
	Reason  string
	Pending int // undelivered messages after the event
}

type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
