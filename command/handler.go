// Package command implements the wire protocol commands. Every command runs
// on the executor of its session.
package command

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/codes"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/session"
	"github.com/liuxd6825/iedriver/trace"
)

// Session is what commands need from a driver session.
type Session interface {
	common.Session
	ID() string
	Finder() *common.ElementFinder
	Options() session.Options
	Executor() *session.Executor
	Tracer() *trace.Tracer
}

var _ Session = &session.Session{}

// Parameters are the values taken from the request path, such as the
// element id of a child search.
type Parameters map[string]string

// Command is the body of one wire protocol command.
type Command interface {
	ExecuteInternal(ctx context.Context, sess Session, locator Parameters, params gjson.Result, resp *Response)
}

// Handler runs a Command on the session executor and turns any failure to
// run it into an UnhandledError response.
type Handler struct {
	name    string
	command Command
	logger  *log.Logger
}

// NewHandler wraps cmd under name.
func NewHandler(name string, cmd Command, logger *log.Logger) *Handler {
	return &Handler{name: name, command: cmd, logger: logger}
}

// Name returns the command name.
func (h *Handler) Name() string { return h.name }

// Execute runs the command and returns its response. Execute never panics.
// The command is traced as one span, with the scripts it runs as children.
func (h *Handler) Execute(ctx context.Context, sess Session, locator Parameters, body []byte) *Response {
	ctx, span := sess.Tracer().TraceCommand(ctx, sess.ID(), h.name)
	resp := h.execute(ctx, sess, locator, body)
	span.SetAttributes(trace.AttrStatus.Int(int(resp.Status)))
	if resp.Status != common.Success {
		span.SetStatus(codes.Error, resp.Message())
	}
	span.End()
	return resp
}

func (h *Handler) execute(ctx context.Context, sess Session, locator Parameters, body []byte) *Response {
	if len(body) > 0 && !gjson.ValidBytes(body) {
		resp := &Response{SessionID: sess.ID()}
		resp.SetErrorResponse(common.UnhandledError, "Malformed parameters: body is not valid JSON")
		return resp
	}
	params := gjson.ParseBytes(body)

	out := make(chan *Response, 1)
	err := sess.Executor().Run(ctx, func() error {
		resp := &Response{SessionID: sess.ID()}
		defer func() {
			if r := recover(); r != nil {
				h.logger.Errorf("Handler:Execute", "sid:%s command:%s panic:%v", sess.ID(), h.name, r)
				resp.SetErrorResponse(common.UnhandledError, fmt.Sprintf("%s: %v", h.name, r))
			}
			out <- resp
		}()
		h.command.ExecuteInternal(ctx, sess, locator, params, resp)
		return nil
	})
	if err != nil {
		resp := &Response{SessionID: sess.ID()}
		resp.SetErrorResponse(common.UnhandledError, err.Error())
		return resp
	}

	resp := <-out
	h.logger.Debugf("Handler:Execute", "sid:%s command:%s status:%d", sess.ID(), h.name, resp.Status)
	return resp
}

func requireString(params gjson.Result, name string, resp *Response) (string, bool) {
	v := params.Get(name)
	if !v.Exists() || v.Type != gjson.String {
		resp.SetErrorResponse(common.UnhandledError, "Missing parameter: "+name)
		return "", false
	}
	return v.String(), true
}
