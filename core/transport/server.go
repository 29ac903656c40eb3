// Package transport moves protocol envelopes over line-delimited JSON
// streams. The server side reads request lines and writes response lines;
// the client side drives a bridge child process through one call.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/issuebridge/bridge-core/core/dispatch"
	"github.com/issuebridge/bridge-core/core/protocol"
)

// maxLineBytes bounds a single request line. Search responses can be large
// but inbound requests stay small; 1 MiB leaves generous headroom.
const maxLineBytes = 1 << 20

// Server reads one request per input line and writes one response per
// output line. Requests run concurrently, so responses may complete in any
// order; callers correlate by id.
type Server struct {
	dispatcher *dispatch.Dispatcher
	in         io.Reader
	out        io.Writer

	mu sync.Mutex
}

// NewServer returns a Server wired to the given streams.
func NewServer(dispatcher *dispatch.Dispatcher, in io.Reader, out io.Writer) *Server {
	return &Server{dispatcher: dispatcher, in: in, out: out}
}

// Serve processes request lines until the input stream closes or the context
// is canceled, then waits for in-flight requests to finish. Cancellation
// returns promptly even while the input read is blocked, so a signal can
// stop the bridge with stdin still open. Malformed lines are logged and
// dropped without a response; blank lines are skipped.
func (s *Server) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	// The reader goroutine owns the blocking Scan calls. After cancellation
	// it may stay parked in Scan until the input closes; it holds nothing
	// but the input stream, and the process is on its way out.
	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading request stream: %w", err)
					}
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				slog.Debug("skipping blank input line")
				continue
			}

			req, err := protocol.DecodeRequest(line)
			if err != nil {
				slog.Error("dropping malformed request line", "error", err)
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				s.write(s.dispatcher.Dispatch(ctx, req))
			}()
		}
	}
}

func (s *Server) write(resp protocol.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
