package sim

import "strings"

// renderQueues draws every process queue as `[entry entry ]` side by side.
func (s *Simulation) renderQueues() string {
	var b strings.Builder
	for pid := 0; pid < s.queues.Processes(); pid++ {
		b.WriteByte('[')
		for _, op := range s.queues.Entries(pid) {
			b.WriteString(op.String())
		}
		b.WriteByte(']')
	}
	return b.String()
}

func (s *Simulation) renderChannel() string {
	var b strings.Builder
	b.WriteString("Message Queue: ")
	for _, msg := range s.channel.Pending() {
		b.WriteString(msg.String())
	}
	return b.String()
}
