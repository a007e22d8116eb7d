// Package tool implements the Tool Dispatcher (§4.9): a named-callable
// registry shared by the HTTP /api/v1/tool/invoke route and an MCP server,
// wrapping every call so a handler failure becomes an error field in the
// response rather than a panic or propagated error.
package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manak-ai/retrieval/internal/domain"
)

// Handler answers one tool invocation.
type Handler func(ctx context.Context, req domain.QueryRequest) (any, error)

// InvokeRequest is the dispatcher's entry-point request shape.
type InvokeRequest struct {
	ToolID       string
	QueryRequest domain.QueryRequest
}

// InvokeResponse is the dispatcher's entry-point response shape: exactly one
// of Result or Error is set.
type InvokeResponse struct {
	ToolID string `json:"toolId"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ErrUnknownTool is wrapped into the response's Error field, never returned
// to the caller as a Go error.
var ErrUnknownTool = errors.New("unsupported tool id")

// Dispatcher maintains the toolId -> Handler mapping.
type Dispatcher struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

// New builds an empty Dispatcher.
func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{handlers: make(map[string]Handler), logger: logger}
}

// Register adds a tool to the dispatcher. Intended to be called during
// startup wiring, not concurrently with Invoke.
func (d *Dispatcher) Register(toolID string, h Handler) {
	d.handlers[toolID] = h
}

// ToolIDs returns the registered tool IDs, for the startup announcement
// (§4.14) and the MCP server registration pass.
func (d *Dispatcher) ToolIDs() []string {
	ids := make([]string, 0, len(d.handlers))
	for id := range d.handlers {
		ids = append(ids, id)
	}
	return ids
}

// Invoke validates req.ToolID, looks up the handler, and calls it. It never
// returns an error: any failure — unknown tool, panic in a handler, or a
// handler-returned error — is captured in the response's Error field (§4.9).
func (d *Dispatcher) Invoke(ctx context.Context, req InvokeRequest) (resp InvokeResponse) {
	resp.ToolID = req.ToolID

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked", "toolId", req.ToolID, "panic", r)
			resp.Error = fmt.Sprintf("tool handler panicked: %v", r)
			resp.Result = nil
		}
	}()

	if req.ToolID == "" {
		resp.Error = "tool id is required"
		return resp
	}

	handler, ok := d.handlers[req.ToolID]
	if !ok {
		resp.Error = fmt.Errorf("%w: %s", ErrUnknownTool, req.ToolID).Error()
		return resp
	}

	result, err := handler(ctx, req.QueryRequest)
	if err != nil {
		d.logger.Error("tool invocation failed", "toolId", req.ToolID, "error", err)
		resp.Error = err.Error()
		return resp
	}

	resp.Result = result
	return resp
}
