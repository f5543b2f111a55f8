package agi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Server accepts FastAGI connections and services each one in its own
// goroutine. A session may legitimately take tens of seconds (the pulse
// hold happens inside the handler), so shutdown waits for in-flight
// sessions up to the caller-supplied context.
type Server struct {
	router      *Router
	logger      *slog.Logger
	readTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	inFlight sync.WaitGroup
	closed   atomic.Bool
}

// NewServer creates a server over the given router. readTimeout bounds
// reading the environment block of a new connection.
func NewServer(router *Router, logger *slog.Logger, readTimeout time.Duration) *Server {
	return &Server{
		router:      router,
		logger:      logger,
		readTimeout: readTimeout,
	}
}

// ListenAndServe binds addr and serves until Stop is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding AGI listener on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections from ln until Stop closes it.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			return fmt.Errorf("accepting AGI connection: %w", err)
		}

		s.inFlight.Add(1)
		go func() {
			defer s.inFlight.Done()
			s.ServeConn(conn)
		}()
	}
}

// Stop closes the listener and waits for in-flight sessions until ctx
// expires. Sessions still running after that are abandoned to exit.
func (s *Server) Stop(ctx context.Context) error {
	s.closed.Store(true)

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln != nil {
		if err := ln.Close(); err != nil {
			return fmt.Errorf("closing AGI listener: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sessions still in flight at shutdown: %w", ctx.Err())
	}
}

// ServeConn services a single connection. Exported so tests can drive
// the full pipeline over net.Pipe.
func (s *Server) ServeConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	sess := NewSession(conn, s.logger)
	logger := sess.Logger()

	if s.readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			logger.Error("setting read deadline", "err", err)
			return
		}
	}

	req, err := readRequest(sess.reader)
	if err != nil {
		logger.Warn("rejecting malformed AGI session", "err", err)
		return
	}
	if addr := conn.RemoteAddr(); addr != nil {
		req.RemoteAddr = addr.String()
	}

	logger.Debug("new AGI request", "script", req.Script, "remote", req.RemoteAddr)

	err = s.router.Dispatch(context.Background(), sess, req)
	if err == nil {
		return
	}

	// Per-request errors never crash the process; they become a
	// caller-visible diagnostic here, at the protocol boundary.
	var clientErr *ClientError
	switch {
	case errors.As(err, &clientErr):
		logger.Warn("request failed on the caller's side", "script", req.Script, "err", err)
		s.report(sess, clientErr.Msg)
	case errors.Is(err, ErrHangup):
		logger.Warn("caller hung up mid-request", "script", req.Script)
	default:
		logger.Error("request failed", "script", req.Script, "err", err)
		s.report(sess, "internal error")
	}
}

func (s *Server) report(sess *Session, msg string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sess.Verbose(ctx, msg, 1); err != nil {
		sess.Logger().Debug("could not report error to caller", "err", err)
	}
}
