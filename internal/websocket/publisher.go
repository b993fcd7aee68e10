package websocket

// EventPublisher defines the interface for publishing live-update events
type EventPublisher interface {
	Publish(event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event
func (h *Hub) Publish(event Event) {
	h.Broadcast(event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when live updates are disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(event Event) {}

// MultiPublisher fans an event out to several publishers in order
type MultiPublisher []EventPublisher

// NewMultiPublisher drops nil publishers and returns the rest as one
func NewMultiPublisher(publishers ...EventPublisher) MultiPublisher {
	out := make(MultiPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Publish forwards the event to every publisher
func (m MultiPublisher) Publish(event Event) {
	for _, p := range m {
		p.Publish(event)
	}
}
