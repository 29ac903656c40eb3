package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/issuebridge/bridge-core/core/protocol"
)

var requestSeq atomic.Uint64

// Client runs a bridge executable for one call at a time: it spawns the
// process, writes a single request line, closes stdin and reads the response
// from stdout. The bridge's own diagnostics on stderr pass through.
type Client struct {
	// BinaryPath is the bridge executable to spawn.
	BinaryPath string

	// Stderr receives the child's diagnostic output. Defaults to os.Stderr.
	Stderr io.Writer
}

// NewClient returns a Client for the bridge binary at path.
func NewClient(path string) *Client {
	return &Client{BinaryPath: path}
}

// Call sends one request and returns the raw result payload. A response
// carrying an error becomes a plain Go error with the same message.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := protocol.Request{
		ID:     protocol.StringID(fmt.Sprintf("cli-%d-%d", time.Now().UnixNano(), requestSeq.Add(1))),
		Method: method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding params: %w", err)
		}
		req.Params = data
	}

	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, c.BinaryPath)
	cmd.Stdin = bytes.NewReader(append(line, '\n'))
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running bridge %s: %w", c.BinaryPath, err)
	}

	resp, err := findResponse(&stdout)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, errors.New(resp.Error.Message)
	}
	return resp.Result, nil
}

// findResponse scans stdout for the first line that parses as a response
// envelope, tolerating any stray output around it.
func findResponse(r io.Reader) (protocol.Response, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		resp, err := protocol.DecodeResponse(line)
		if err != nil {
			continue
		}
		return resp, nil
	}
	if err := scanner.Err(); err != nil {
		return protocol.Response{}, fmt.Errorf("reading bridge output: %w", err)
	}
	return protocol.Response{}, errors.New("bridge produced no response")
}
