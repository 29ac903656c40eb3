// Package dispatch executes decoded bridge requests. Every request, however
// malformed, yields exactly one response envelope; errors never escape.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/issuebridge/bridge-core/core/platform"
	"github.com/issuebridge/bridge-core/core/protocol"
)

// Dispatcher routes requests to the platform adapter the registry selects.
type Dispatcher struct {
	registry *platform.Registry
}

// New returns a Dispatcher over the given registry.
func New(registry *platform.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch runs one request to completion and packages the outcome. The
// request id is echoed verbatim, including a missing id; any error from any
// step becomes the response's error message and is also logged on the
// diagnostic channel.
func (d *Dispatcher) Dispatch(ctx context.Context, req protocol.Request) (resp protocol.Response) {
	log := slog.With("op", "dispatch", "method", req.Method)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			log.Error("request panicked", "error", err)
			resp = protocol.Failure(req.ID, err)
		}
	}()

	result, err := d.execute(ctx, req)
	if err != nil {
		log.Error("request failed", "error", err)
		return protocol.Failure(req.ID, err)
	}
	log.Debug("request handled")
	return protocol.Success(req.ID, result)
}

func (d *Dispatcher) execute(ctx context.Context, req protocol.Request) (any, error) {
	var sel struct {
		Platform string `json:"platform"`
	}
	if len(req.Params) > 0 {
		// A non-object params value is left for the adapter to reject.
		_ = json.Unmarshal(req.Params, &sel)
	}

	adapter, err := d.registry.Resolve(sel.Platform)
	if err != nil {
		return nil, err
	}

	switch req.Method {
	case protocol.MethodCreateIssue:
		return adapter.CreateIssue(ctx, req.Params)
	case protocol.MethodUpdateIssue:
		return adapter.UpdateIssue(ctx, req.Params)
	case protocol.MethodSearchIssues:
		return adapter.SearchIssues(ctx, req.Params)
	case protocol.MethodHasRequiredConfig:
		return map[string]bool{"hasRequiredConfig": adapter.HasRequiredConfig()}, nil
	default:
		return nil, fmt.Errorf("Unknown method: %s", req.Method)
	}
}
