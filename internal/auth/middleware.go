package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/door-control/dcc/internal/agi"
)

// SecretVariable is the dialplan variable that must hold the shared
// secret on the Asterisk side.
const SecretVariable = "DCC_DIGEST_SECRET"

// Digest is the AGI pre-stage that runs the handshake on every request,
// regardless of route. It ignores the request itself; a failed
// handshake stops the pipeline before any actuation logic runs.
type Digest struct {
	secret  string
	timeout time.Duration
	logger  *slog.Logger
}

// Compile-time assertion that Digest is an agi pipeline stage.
var _ agi.Handler = (*Digest)(nil)

// NewDigest creates the digest pre-stage. timeout bounds the round-trip
// with the dialplan.
func NewDigest(secret string, timeout time.Duration, logger *slog.Logger) *Digest {
	return &Digest{
		secret:  secret,
		timeout: timeout,
		logger:  logger,
	}
}

// Handle performs one challenge-response exchange on the session.
func (d *Digest) Handle(ctx context.Context, sess *agi.Session, req *agi.Request) error {
	nonce := NewNonce()
	expr := fmt.Sprintf("${SHA1(${%s}:%s)}", SecretVariable, nonce)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	response, set, err := sess.GetFullVariable(ctx, expr)
	if err != nil {
		return fmt.Errorf("digest exchange: %w", err)
	}
	if !set || response == "" {
		d.logger.Warn("AGI request without shared secret", "session", sess.ID())
		return &agi.ClientError{
			Msg: fmt.Sprintf("unauthenticated: %s is not set", SecretVariable),
			Err: ErrMissingSecret,
		}
	}

	if err := VerifyDigest(d.secret, nonce, response); err != nil {
		d.logger.Warn("AGI request failed authentication", "session", sess.ID(), "err", err)
		msg := "unauthenticated: wrong digest"
		if errors.Is(err, ErrDigestDecode) {
			msg = "unauthenticated: digest not decodable"
		}
		return &agi.ClientError{Msg: msg, Err: err}
	}

	return nil
}
