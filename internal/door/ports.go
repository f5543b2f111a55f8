package door

import (
	"fmt"
	"net"
	"time"
)

// FrameSender is the connectionless outbound channel for one actuation.
type FrameSender interface {
	// Send transmits one wire frame to addr as a single datagram.
	Send(frame []byte, addr string) error

	// Close releases the channel. Channels are never pooled; every
	// actuation acquires and closes its own.
	Close() error
}

// SenderFactory acquires a fresh FrameSender. Acquisition failure must
// be reported as ErrChannelBind.
type SenderFactory func() (FrameSender, error)

// AuditLogger records the outcome of one actuation attempt.
type AuditLogger interface {
	LogActuation(sessionID, door, outcome, code string, latency time.Duration)
}

// UDPSender is the production FrameSender: a UDP socket bound to an
// ephemeral local port.
type UDPSender struct {
	conn *net.UDPConn
}

// Compile-time assertion that UDPSender is a FrameSender.
var _ FrameSender = (*UDPSender)(nil)

// NewUDPSender binds a fresh outbound socket. It is a SenderFactory.
func NewUDPSender() (FrameSender, error) {
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChannelBind, err)
	}
	return &UDPSender{conn: conn}, nil
}

// Send transmits frame to addr as one datagram.
func (s *UDPSender) Send(frame []byte, addr string) error {
	dst, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return fmt.Errorf("resolving CMI address %s: %w", addr, err)
	}
	n, err := s.conn.WriteToUDP(frame, dst)
	if err != nil {
		return fmt.Errorf("sending frame to %s: %w", addr, err)
	}
	if n != len(frame) {
		return fmt.Errorf("short write to %s: %d of %d bytes", addr, n, len(frame))
	}
	return nil
}

// Close releases the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}
