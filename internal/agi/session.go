package agi

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/xid"
)

// Response is one parsed AGI status line.
type Response struct {
	// Code is the status (200 on success).
	Code int

	// Result is the numeric result= field of a 200 line.
	Result int

	// Value is the parenthesized portion of a 200 line, "" when absent.
	Value string

	// HasValue distinguishes an empty value from no value at all.
	HasValue bool
}

// Session is one FastAGI connection from Asterisk. Commands are
// exchanged strictly one at a time; the mutex serializes handlers that
// share a session with pre-stages.
type Session struct {
	id     string
	conn   net.Conn
	reader *bufio.Reader
	logger *slog.Logger

	mu     sync.Mutex
	hungup bool
}

// NewSession wraps an accepted connection. The server calls this for
// every connection; tests use it directly with net.Pipe.
func NewSession(conn net.Conn, logger *slog.Logger) *Session {
	id := xid.New().String()
	return &Session{
		id:     id,
		conn:   conn,
		reader: bufio.NewReader(conn),
		logger: logger.With("session", id),
	}
}

// ID returns the unique session ID used in logs and audit records.
func (s *Session) ID() string {
	return s.id
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Exec sends one raw command line and waits for the status line. The
// context deadline, when set, bounds the whole exchange.
func (s *Session) Exec(ctx context.Context, command string) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hungup {
		return nil, ErrHangup
	}

	// A zero deadline clears any leftover from the previous exchange.
	deadline, _ := ctx.Deadline()
	if err := s.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting session deadline: %w", err)
	}

	if _, err := fmt.Fprintf(s.conn, "%s\n", command); err != nil {
		return nil, fmt.Errorf("sending AGI command: %w", err)
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading AGI response: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")

		// Asterisk interleaves an unsolicited HANGUP line when the
		// caller disconnects mid-session.
		if line == "HANGUP" {
			s.hungup = true
			return nil, ErrHangup
		}
		if line == "" {
			continue
		}

		return parseResponse(line)
	}
}

// GetFullVariable evaluates an expression on the Asterisk side. The
// second return value reports whether the expression evaluated to a set
// value; an unset variable comes back as result=0 with no value.
func (s *Session) GetFullVariable(ctx context.Context, expr string) (string, bool, error) {
	resp, err := s.Exec(ctx, fmt.Sprintf("GET FULL VARIABLE %s", quote(expr)))
	if err != nil {
		return "", false, err
	}
	if resp.Result != 1 || !resp.HasValue {
		return "", false, nil
	}
	return resp.Value, true, nil
}

// Verbose sends a diagnostic message to the Asterisk console.
func (s *Session) Verbose(ctx context.Context, msg string, level int) error {
	_, err := s.Exec(ctx, fmt.Sprintf("VERBOSE %s %d", quote(msg), level))
	return err
}

// SetVariable sets a channel variable on the caller's side.
func (s *Session) SetVariable(ctx context.Context, name, value string) error {
	_, err := s.Exec(ctx, fmt.Sprintf("SET VARIABLE %s %s", name, quote(value)))
	return err
}

// parseResponse parses an AGI status line such as
//
//	200 result=1 (0123abc)
//	200 result=0
//	510 Invalid or unknown command
func parseResponse(line string) (*Response, error) {
	codeStr, rest, _ := strings.Cut(line, " ")
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return nil, fmt.Errorf("malformed AGI status line %q", line)
	}
	if code != 200 {
		return nil, &ProtocolError{Code: code, Line: line}
	}

	if !strings.HasPrefix(rest, "result=") {
		return nil, fmt.Errorf("200 line without result field: %q", line)
	}
	rest = strings.TrimPrefix(rest, "result=")

	resultStr, tail, _ := strings.Cut(rest, " ")
	result, err := strconv.Atoi(resultStr)
	if err != nil {
		return nil, fmt.Errorf("malformed result field in %q", line)
	}

	resp := &Response{Code: code, Result: result}
	if strings.HasPrefix(tail, "(") && strings.HasSuffix(tail, ")") {
		resp.Value = tail[1 : len(tail)-1]
		resp.HasValue = true
	}
	return resp, nil
}

// quote wraps an argument in double quotes for the AGI command line.
// Newlines would desynchronize the protocol and are stripped.
func quote(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ", `"`, `\"`).Replace(s)
	return `"` + s + `"`
}
