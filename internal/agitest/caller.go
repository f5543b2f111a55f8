// Package agitest simulates the Asterisk side of a FastAGI session so
// server, pre-stage and handler tests can run over net.Pipe without a
// PBX.
package agitest

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net"
	"regexp"
	"strings"
)

// Responder produces the status line for one received command.
type Responder func(command string) string

// Caller plays the Asterisk role: it sends the environment block, then
// answers every command line until the container closes the connection.
type Caller struct {
	// Script is the agi_network_script value ("open_door/front").
	Script string

	// Env holds extra agi_* keys, without the prefix.
	Env map[string]string

	// Respond answers command lines. Nil answers "200 result=1" to
	// everything.
	Respond Responder

	// Commands records every command line received, in order.
	Commands []string
}

// Run drives the session on conn until EOF. It returns the error that
// ended the session, nil on a clean close by the container.
func (c *Caller) Run(conn net.Conn) error {
	defer func() { _ = conn.Close() }()

	var block strings.Builder
	fmt.Fprintf(&block, "agi_network_script: %s\n", c.Script)
	fmt.Fprintf(&block, "agi_request: agi://test/%s\n", c.Script)
	for key, value := range c.Env {
		fmt.Fprintf(&block, "agi_%s: %s\n", key, value)
	}
	block.WriteString("\n")
	if _, err := conn.Write([]byte(block.String())); err != nil {
		return fmt.Errorf("sending environment block: %w", err)
	}

	return c.AnswerCommands(conn)
}

// AnswerCommands services the command/response loop without sending an
// environment block first. Useful for exercising a single pipeline
// stage on a raw session.
func (c *Caller) AnswerCommands(conn net.Conn) error {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil // container closed the session
		}
		command := strings.TrimRight(line, "\r\n")
		c.Commands = append(c.Commands, command)

		response := "200 result=1"
		if c.Respond != nil {
			response = c.Respond(command)
		}
		if _, err := fmt.Fprintf(conn, "%s\n", response); err != nil {
			return fmt.Errorf("sending response: %w", err)
		}
	}
}

var sha1Expr = regexp.MustCompile(`\$\{SHA1\(\$\{[A-Z0-9_]+\}:([0-9a-f]{40})\)\}`)

// DigestResponder answers the digest challenge the way a dialplan with
// the given secret set would, and acknowledges everything else.
func DigestResponder(secret string) Responder {
	return func(command string) string {
		if !strings.HasPrefix(command, "GET FULL VARIABLE") {
			return "200 result=1"
		}
		m := sha1Expr.FindStringSubmatch(command)
		if m == nil {
			return "200 result=0"
		}
		sum := sha1.Sum([]byte(secret + ":" + m[1]))
		return fmt.Sprintf("200 result=1 (%s)", hex.EncodeToString(sum[:]))
	}
}

// SecretUnsetResponder simulates a dialplan that never set the shared
// secret variable: the SHA1 expression does not evaluate.
func SecretUnsetResponder() Responder {
	return func(command string) string {
		if strings.HasPrefix(command, "GET FULL VARIABLE") {
			return "200 result=0"
		}
		return "200 result=1"
	}
}

// StaticDigestResponder always answers the digest challenge with the
// given literal value.
func StaticDigestResponder(value string) Responder {
	return func(command string) string {
		if strings.HasPrefix(command, "GET FULL VARIABLE") {
			return fmt.Sprintf("200 result=1 (%s)", value)
		}
		return "200 result=1"
	}
}
