package agi

import (
	"context"
	"fmt"
	"strings"
)

// Handler services one AGI request on its session.
type Handler interface {
	Handle(ctx context.Context, sess *Session, req *Request) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, sess *Session, req *Request) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, sess *Session, req *Request) error {
	return f(ctx, sess, req)
}

// Router matches request paths against a static route table. Pre-stages
// registered with Use run in order before every routed handler; if one
// fails, neither the remaining stages nor the handler run.
type Router struct {
	pre    []Handler
	routes []route
}

type route struct {
	segments []segment
	handler  Handler
}

type segment struct {
	literal string
	capture string // non-empty for :name segments
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Use appends a pre-stage applied to every request before routing.
func (r *Router) Use(h Handler) *Router {
	r.pre = append(r.pre, h)
	return r
}

// Route registers a handler for a path template. Template segments
// starting with ':' capture the matched request segment under that name.
// Registration happens once at startup; a malformed template is a
// programming error and panics.
func (r *Router) Route(template string, h Handler) *Router {
	parts := splitPath(template)
	if len(parts) == 0 {
		panic(fmt.Sprintf("agi: empty route template %q", template))
	}
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			if name == "" {
				panic(fmt.Sprintf("agi: route template %q has an unnamed capture", template))
			}
			segments = append(segments, segment{capture: name})
			continue
		}
		segments = append(segments, segment{literal: part})
	}
	r.routes = append(r.routes, route{segments: segments, handler: h})
	return r
}

// Dispatch runs the pre-stage pipeline and then the matching handler.
func (r *Router) Dispatch(ctx context.Context, sess *Session, req *Request) error {
	for _, stage := range r.pre {
		if err := stage.Handle(ctx, sess, req); err != nil {
			return err
		}
	}

	handler, captures := r.match(req.Script)
	if handler == nil {
		return &ClientError{Msg: fmt.Sprintf("no route for %s", req.Script)}
	}
	req.Captures = captures

	return handler.Handle(ctx, sess, req)
}

func (r *Router) match(path string) (Handler, map[string]string) {
	parts := splitPath(path)
	for _, rt := range r.routes {
		if len(rt.segments) != len(parts) {
			continue
		}
		captures := make(map[string]string)
		matched := true
		for i, seg := range rt.segments {
			if seg.capture != "" {
				captures[seg.capture] = parts[i]
				continue
			}
			if seg.literal != parts[i] {
				matched = false
				break
			}
		}
		if matched {
			return rt.handler, captures
		}
	}
	return nil, nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
