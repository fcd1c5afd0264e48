package channel

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("message channel full")
	ErrNoMessage        = errors.New("no message available")
)

// Message is a value addressed from one process to another. Ids are 0-based.
type Message struct {
	Sender   int
	Receiver int
	Value    int
}

// NoMessage is returned alongside ErrNoMessage.
var NoMessage = Message{Sender: -1, Receiver: -1, Value: -1}

func (m Message) String() string {
	return fmt.Sprintf("[Sender: %d, Receiver: %d, Value: %d] ", m.Sender+1, m.Receiver+1, m.Value)
}

// Channel is a bounded FIFO whose cursors only move forward. A slot is used
// once per run: consuming a message does not free room for another send.
//
// Invariant: 0 <= front <= rear <= slots.
type Channel struct {
	messages []Message
	front    int
	rear     int
	slots    int
}

func New(slots int) *Channel {
	if slots < 0 {
		slots = 0
	}
	return &Channel{
		messages: make([]Message, 0, slots),
		slots:    slots,
	}
}

// Send appends a message at the rear if a slot remains.
func (c *Channel) Send(sender, receiver, value int) error {
	if c.rear >= c.slots {
		return fmt.Errorf("send from %d to %d: %w (%d/%d slots used)", sender+1, receiver+1, ErrCapacityExceeded, c.rear, c.slots)
	}
	c.messages = append(c.messages, Message{Sender: sender, Receiver: receiver, Value: value})
	c.rear++
	return nil
}

// Receive consumes the head message if it is addressed to receiver. The head
// is the only message ever inspected; a head addressed elsewhere blocks every
// other receiver.
func (c *Channel) Receive(receiver int) (Message, error) {
	if c.Empty() {
		return NoMessage, ErrNoMessage
	}
	head := c.messages[c.front]
	if head.Receiver != receiver {
		return NoMessage, ErrNoMessage
	}
	c.front++
	return head, nil
}

// Peek returns the head message without consuming it.
func (c *Channel) Peek() (Message, bool) {
	if c.Empty() {
		return NoMessage, false
	}
	return c.messages[c.front], true
}

// Pending returns a copy of the undelivered messages in order.
func (c *Channel) Pending() []Message {
	return append([]Message(nil), c.messages[c.front:c.rear]...)
}

func (c *Channel) Empty() bool { return c.front == c.rear }
func (c *Channel) Len() int { return c.rear - c.front }
func (c *Channel) Front() int { return c.front }
func (c *Channel) Rear() int { return c.rear }
func (c *Channel) Slots() int { return c.slots }
