package agi

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Response
	}{
		{"plain ok", "200 result=1", Response{Code: 200, Result: 1}},
		{"unset variable", "200 result=0", Response{Code: 200, Result: 0}},
		{"negative result", "200 result=-1", Response{Code: 200, Result: -1}},
		{
			"with value",
			"200 result=1 (d0be2dc421be4fcd0172e5afceea3970e2f3d940)",
			Response{Code: 200, Result: 1, Value: "d0be2dc421be4fcd0172e5afceea3970e2f3d940", HasValue: true},
		},
		{
			"empty value",
			"200 result=1 ()",
			Response{Code: 200, Result: 1, Value: "", HasValue: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseResponseProtocolError(t *testing.T) {
	_, err := parseResponse("510 Invalid or unknown command")

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, 510, protoErr.Code)
}

func TestParseResponseMalformed(t *testing.T) {
	for _, line := range []string{"garbage", "200 noresult", "200 result=x"} {
		_, err := parseResponse(line)
		assert.Error(t, err, "line %q", line)
	}
}

// scriptedPeer answers each command line on conn with the next response.
func scriptedPeer(t *testing.T, conn net.Conn, responses ...string) {
	t.Helper()
	go func() {
		reader := bufio.NewReader(conn)
		for _, response := range responses {
			if _, err := reader.ReadString('\n'); err != nil {
				return
			}
			if _, err := conn.Write([]byte(response + "\n")); err != nil {
				return
			}
		}
	}()
}

func TestSessionGetFullVariable(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	scriptedPeer(t, client, "200 result=1 (secretvalue)")

	sess := NewSession(server, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	value, set, err := sess.GetFullVariable(ctx, "${SOME_VAR}")

	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, "secretvalue", value)
}

func TestSessionGetFullVariableUnset(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	scriptedPeer(t, client, "200 result=0")

	sess := NewSession(server, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, set, err := sess.GetFullVariable(ctx, "${UNSET_VAR}")

	require.NoError(t, err)
	assert.False(t, set)
}

func TestSessionHangup(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	scriptedPeer(t, client, "HANGUP")

	sess := NewSession(server, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := sess.Exec(ctx, "VERBOSE \"hi\" 1")
	require.ErrorIs(t, err, ErrHangup)

	// The session stays unusable afterwards.
	_, err = sess.Exec(ctx, "VERBOSE \"again\" 1")
	require.ErrorIs(t, err, ErrHangup)
}

func TestSessionCommandFraming(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	received := make(chan string, 1)
	go func() {
		reader := bufio.NewReader(client)
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		received <- strings.TrimRight(line, "\n")
		_, _ = client.Write([]byte("200 result=1\n"))
	}()

	sess := NewSession(server, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, sess.SetVariable(ctx, "DCC_STATUS", `opened "now"`))

	command := <-received
	assert.Equal(t, `SET VARIABLE DCC_STATUS "opened \"now\""`, command)
}

func TestSessionContextDeadline(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	// Peer never answers.

	sess := NewSession(server, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := sess.Exec(ctx, "VERBOSE \"hi\" 1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrHangup))
}
