// Package fake provides a recording FrameSender for pulse tests.
package fake

import (
	"sync"

	"github.com/door-control/dcc/internal/door"
)

// Send records one transmitted frame.
type Send struct {
	Frame []byte
	Addr  string
}

// Sender implements door.FrameSender and records every send.
type Sender struct {
	mu     sync.Mutex
	sends  []Send
	closed bool

	// FailOn injects an error for the n-th Send call (0-based).
	FailOn map[int]error
}

// Compile-time assertion that Sender is a FrameSender.
var _ door.FrameSender = (*Sender)(nil)

// Send records the frame, or fails if an error is injected for this call.
func (s *Sender) Send(frame []byte, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.sends)
	if err, ok := s.FailOn[n]; ok {
		return err
	}
	copied := make([]byte, len(frame))
	copy(copied, frame)
	s.sends = append(s.sends, Send{Frame: copied, Addr: addr})
	return nil
}

// Close marks the sender closed.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Sends returns the recorded sends in order.
func (s *Sender) Sends() []Send {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Send, len(s.sends))
	copy(out, s.sends)
	return out
}

// Closed reports whether Close was called.
func (s *Sender) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Factory hands out recording senders, one per actuation, mirroring the
// acquire-fresh-per-pulse contract of the production factory.
type Factory struct {
	mu      sync.Mutex
	senders []*Sender

	// BindErr, when set, makes acquisition fail.
	BindErr error

	// FailSendOn is copied onto every new sender.
	FailSendOn map[int]error
}

// New is a door.SenderFactory.
func (f *Factory) New() (door.FrameSender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.BindErr != nil {
		return nil, f.BindErr
	}
	sender := &Sender{FailOn: f.FailSendOn}
	f.senders = append(f.senders, sender)
	return sender, nil
}

// Senders returns every sender handed out so far.
func (f *Factory) Senders() []*Sender {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Sender, len(f.senders))
	copy(out, f.senders)
	return out
}

// AllSends flattens the sends of every handed-out sender, in order.
func (f *Factory) AllSends() []Send {
	var all []Send
	for _, sender := range f.Senders() {
		all = append(all, sender.Sends()...)
	}
	return all
}
