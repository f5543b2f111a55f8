package agi

import (
	"bufio"
	"fmt"
	"strings"
)

// Request is one inbound AGI request: the environment block Asterisk
// sent when it connected, plus the captures filled in by the router.
type Request struct {
	// Script is the request path from agi_network_script, normalized to
	// a leading slash ("/open_door/front").
	Script string

	// Env holds the raw agi_* environment block, keys without the agi_
	// prefix.
	Env map[string]string

	// Captures holds the :name segments matched by the router.
	Captures map[string]string

	// RemoteAddr is the peer address of the session, for logs.
	RemoteAddr string
}

// readRequest parses the agi_* environment block, which Asterisk
// terminates with an empty line.
func readRequest(r *bufio.Reader) (*Request, error) {
	env := make(map[string]string)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading AGI environment: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		key, value, found := strings.Cut(line, ": ")
		if !found {
			// Tolerate "key:" with an empty value.
			key, _, found = strings.Cut(line, ":")
			if !found {
				return nil, fmt.Errorf("malformed AGI environment line %q", line)
			}
			value = ""
		}
		env[strings.TrimPrefix(key, "agi_")] = value
	}

	script := env["network_script"]
	if script == "" {
		return nil, fmt.Errorf("AGI environment carries no network_script")
	}
	if !strings.HasPrefix(script, "/") {
		script = "/" + script
	}

	return &Request{
		Script:   script,
		Env:      env,
		Captures: make(map[string]string),
	}, nil
}
