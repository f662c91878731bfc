// Package mcpserver implements C11: tool dispatch, response shaping, and
// the stdio MCP transport loop. It is grounded on the teacher's
// svrcore-style uniform response envelope and mcpcli/http.go's
// request/response timing capture, adapted from an HTTP transaction shape
// to the MCP tools/call envelope of spec §6.4.
package mcpserver

import (
	"encoding/json"
	"time"

	"github.com/bevyremote/brpmcp/internal/brperr"
)

// Status is the top-level outcome of a tool call (spec §6.4).
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// CallInfo records which tool ran and against which BRP endpoint, for
// agent-facing debuggability (spec §6.4's call_info).
type CallInfo struct {
	Tool       string `json:"tool"`
	BRPMethod  string `json:"brp_method,omitempty"`
	Port       int    `json:"port,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// ErrorInfo carries a structured error plus, when format discovery ran,
// a note about what correction was attempted (spec §6.4's error_info).
type ErrorInfo struct {
	Code          brperr.Code `json:"code"`
	Message       string      `json:"message"`
	OriginalError string      `json:"original_error,omitempty"`
	Guidance      string      `json:"guidance,omitempty"`
}

// Envelope is the uniform JSON body returned inside every CallToolResult's
// TextContent (spec §6.4).
type Envelope struct {
	Status    Status            `json:"status"`
	Message   string            `json:"message,omitempty"`
	CallInfo  CallInfo          `json:"call_info"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
	Result    json.RawMessage   `json:"result,omitempty"`
	ErrorInfo *ErrorInfo        `json:"error_info,omitempty"`
}

func ok(tool, brpMethod string, port int, start time.Time, result json.RawMessage, metadata map[string]any) Envelope {
	return Envelope{
		Status:   StatusOK,
		CallInfo: CallInfo{Tool: tool, BRPMethod: brpMethod, Port: port, DurationMS: time.Since(start).Milliseconds()},
		Result:   result,
		Metadata: metadata,
	}
}

func fail(tool, brpMethod string, port int, start time.Time, err *brperr.Error, guidance string) Envelope {
	return Envelope{
		Status:  StatusError,
		Message: err.Error(),
		CallInfo: CallInfo{Tool: tool, BRPMethod: brpMethod, Port: port, DurationMS: time.Since(start).Milliseconds()},
		ErrorInfo: &ErrorInfo{
			Code:          err.Code,
			Message:       err.Message,
			OriginalError: err.OriginalError,
			Guidance:      guidance,
		},
	}
}

func invalidParams(tool string, err error) Envelope {
	return Envelope{
		Status:  StatusError,
		Message: "invalid arguments for " + tool,
		CallInfo: CallInfo{Tool: tool},
		ErrorInfo: &ErrorInfo{
			Code:    brperr.CodeInvalidParams,
			Message: err.Error(),
		},
	}
}
