package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/ops"
	"github.com/hpungsan/minutes/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store      *store.Store
	exportsDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, exportsDir string) *Handlers {
	return &Handlers{store: st, exportsDir: exportsDir}
}

// Request types for each tool

// ListRequest represents the arguments for meeting_list.
type ListRequest struct {
	Query  string `json:"query,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// IDRequest represents the arguments of tools addressing one meeting.
type IDRequest struct {
	ID string `json:"id"`
}

// GetRequest represents the arguments for meeting_get.
type GetRequest struct {
	ID                string `json:"id"`
	IncludeTranscript *bool  `json:"include_transcript,omitempty"`
}

// ExportRequest represents the arguments for meeting_export.
type ExportRequest struct {
	Path  string `json:"path,omitempty"`
	Query string `json:"query,omitempty"`
}

// ImportRequest represents the arguments for meeting_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleList handles the meeting_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.List(ctx, h.store, ops.ListInput{
		Query:  input.Query,
		Limit:  input.Limit,
		Offset: input.Offset,
	}))
}

// HandleGet handles the meeting_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Get(ctx, h.store, ops.GetInput{
		ID:                input.ID,
		IncludeTranscript: input.IncludeTranscript,
	}))
}

// HandleDelete handles the meeting_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Delete(ctx, h.store, ops.DeleteInput{ID: input.ID}))
}

// HandleInsights handles the meeting_insights tool call.
func (h *Handlers) HandleInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Insights(ctx, h.store, ops.InsightsInput{ID: input.ID}))
}

// HandleStats handles the meeting_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(ops.Stats(ctx, h.store))
}

// HandleSummarize handles the meeting_summarize tool call.
func (h *Handlers) HandleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Summarize(ctx, h.store, ops.SummarizeInput{ID: input.ID}))
}

// HandleExport handles the meeting_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Export(ctx, h.store, ops.ExportInput{
		ExportsDir: h.exportsDir,
		Path:       input.Path,
		Query:      input.Query,
	}))
}

// HandleImport handles the meeting_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(ops.Import(ctx, h.store, ops.ImportInput{
		ExportsDir: h.exportsDir,
		Path:       input.Path,
		Mode:       ops.ImportMode(input.Mode),
	}))
}

// Result helpers

// respond converts an ops result pair into a tool result.
func respond[T any](out T, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// errorResult creates an MCP error result from any error. IsError is set
// so clients recognize failures. INTERNAL errors carry no details and a
// generic message; their text may include file paths.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var mErr *errors.MinutesError
	if stderrors.As(err, &mErr) && mErr.Code != errors.ErrInternal {
		msg := mErr.Message
		if err != error(mErr) {
			// keep the wrapping context
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    mErr.Code,
			"message": msg,
			"status":  mErr.Status,
		}
		if mErr.Details != nil {
			errorObj["details"] = mErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
