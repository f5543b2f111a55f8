package door

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/door-control/dcc/internal/agi"
)

// StatusVariable is set on the caller's channel after the actuation so
// the dialplan can branch on the outcome.
const StatusVariable = "DCC_STATUS"

// OpenHandler services the /open_door/:name (and /open_room/:name)
// route: resolve the captured name, run the pulse, report the outcome.
// It runs only after the digest pre-stage has passed.
type OpenHandler struct {
	registry   *Registry
	controller *Controller
	audit      AuditLogger
	logger     *slog.Logger
}

// Compile-time assertion that OpenHandler is an agi handler.
var _ agi.Handler = (*OpenHandler)(nil)

// NewOpenHandler wires the route handler. audit may be nil.
func NewOpenHandler(registry *Registry, controller *Controller, audit AuditLogger, logger *slog.Logger) *OpenHandler {
	return &OpenHandler{
		registry:   registry,
		controller: controller,
		audit:      audit,
		logger:     logger,
	}
}

// Handle runs one actuation request end to end.
func (h *OpenHandler) Handle(ctx context.Context, sess *agi.Session, req *agi.Request) error {
	start := time.Now()

	name, ok := req.Captures["name"]
	if !ok || name == "" {
		return agi.NewClientError("no door name captured")
	}

	mapping, err := h.registry.Resolve(name)
	if err != nil {
		h.logAudit(sess.ID(), name, "REJECTED", "NOT_FOUND", time.Since(start))
		return &agi.ClientError{Msg: "door is not known", Err: err}
	}

	if err := h.controller.Pulse(ctx, *mapping); err != nil {
		h.logAudit(sess.ID(), name, "ERROR", codeFromPulseError(err), time.Since(start))
		h.setStatus(ctx, sess, "failed")
		return err
	}

	h.logAudit(sess.ID(), name, "SUCCESS", "SUCCESS", time.Since(start))
	h.logger.Debug("finished opening door", "door", name)
	h.setStatus(ctx, sess, "opened")
	return nil
}

// setStatus is best effort; the pulse outcome stands even when the
// caller is already gone.
func (h *OpenHandler) setStatus(ctx context.Context, sess *agi.Session, status string) {
	if err := sess.SetVariable(ctx, StatusVariable, status); err != nil {
		h.logger.Debug("could not set status variable", "session", sess.ID(), "err", err)
	}
}

func (h *OpenHandler) logAudit(sessionID, door, outcome, code string, latency time.Duration) {
	if h.audit == nil {
		return
	}
	h.audit.LogActuation(sessionID, door, outcome, code, latency)
}

func codeFromPulseError(err error) string {
	var sendErr *SendError
	switch {
	case errors.Is(err, ErrChannelBind):
		return "CHANNEL_BIND"
	case errors.As(err, &sendErr) && sendErr.Phase == PhaseOff:
		return "SEND_OFF"
	case errors.As(err, &sendErr):
		return "SEND_ON"
	default:
		return "ERROR"
	}
}
