package natsio

// Subscription represents interest registered with Client.Subscribe. Call
// Messages to receive deliveries and Unsubscribe when done; the delivery
// channel is closed automatically if the underlying connection is lost.
type Subscription struct {
	sid     string
	subject string
	ch      chan *Message
	client  *Client
}

// Messages returns the channel deliveries arrive on. It is closed when the
// connection is lost. Unsubscribe stops further deliveries but does not
// close the channel.
func (s *Subscription) Messages() <-chan *Message { return s.ch }

// Subject is the subject this subscription was registered for.
func (s *Subscription) Subject() string { return s.subject }

// Pending reports how many deliveries are currently buffered and not yet
// read by the caller.
func (s *Subscription) Pending() int { return len(s.ch) }

// Unsubscribe cancels interest. It is equivalent to
// client.Unsubscribe(UnsubCmd{Sid: s.sid}).
func (s *Subscription) Unsubscribe() error {
	return s.client.Unsubscribe(UnsubCmd{Sid: s.sid})
}
