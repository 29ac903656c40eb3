// Package protocol defines the line-delimited JSON envelope spoken between
// the bridge process and its callers. One request per input line, one
// response per output line.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Supported bridge methods.
const (
	MethodCreateIssue       = "create_issue"
	MethodUpdateIssue       = "update_issue"
	MethodSearchIssues      = "search_issues"
	MethodHasRequiredConfig = "has_required_config"
)

// Request is one decoded input line. The id is an opaque correlation token
// chosen by the caller and echoed back verbatim; the bridge attaches no
// meaning to it and never fabricates one. Params is the operation-specific
// argument object, left raw so each platform adapter can decode its own
// request shape.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ResponseError carries the message text of a failed request.
type ResponseError struct {
	Message string `json:"message"`
}

// Response is one encoded output line. Exactly one of Result and Error is
// non-null; both fields are always present on the wire.
type Response struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *ResponseError  `json:"error"`
}

// Success packages an operation result into a response envelope.
func Success(id json.RawMessage, result any) Response {
	data, err := json.Marshal(result)
	if err != nil {
		return Failure(id, fmt.Errorf("encoding result: %w", err))
	}
	return Response{ID: id, Result: data}
}

// Failure packages an error into a response envelope. The error's message
// text is passed through verbatim.
func Failure(id json.RawMessage, err error) Response {
	return Response{ID: id, Error: &ResponseError{Message: err.Error()}}
}

// DecodeRequest parses one input line into a Request.
func DecodeRequest(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("failed to decode request line: %w", err)
	}
	return req, nil
}

// DecodeResponse parses one output line into a Response.
func DecodeResponse(line []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response line: %w", err)
	}
	return resp, nil
}

// StringID encodes a plain string as a request id.
func StringID(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}
