package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/alucardeht/x-mcp/pkg/protocol"
)

const readBufferSize = 64 * 1024

type Server struct {
	handler *Handler
}

func NewServer(handler *Handler) *Server {
	return &Server{handler: handler}
}

func (s *Server) Handler() *Handler {
	return s.handler
}

// ProcessStream serves one line-delimited JSON-RPC session until r hits
// EOF. Each line is read, dispatched and answered before the next one is
// read. Lines that are not JSON objects are dropped without a reply.
func (s *Server) ProcessStream(ctx context.Context, r io.Reader, w io.Writer) error {
	session := uuid.NewString()
	reader := bufio.NewReaderSize(r, readBufferSize)
	writer := protocol.NewFlushWriter(w)

	log.Info("session started", "session", session)
	defer log.Info("session closed", "session", session)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			if err := s.serveLine(ctx, session, line, writer); err != nil {
				return err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read request: %w", readErr)
		}
	}
}

func (s *Server) serveLine(ctx context.Context, session string, line []byte, writer *protocol.FlushWriter) error {
	req, ok := ParseRequest(line)
	if !ok {
		if len(bytes.TrimSpace(line)) > 0 {
			log.Warn("dropping unparseable line", "session", session, "bytes", len(line))
		}
		return nil
	}

	start := time.Now()
	resp := s.handler.Handle(ctx, req)
	log.Debug("request handled",
		"session", session,
		"method", req.Method,
		"id", string(req.ID),
		"duration", time.Since(start))

	if resp == nil {
		return nil
	}

	data, err := EncodeResponse(resp)
	if err != nil {
		log.Warn("dropping unserializable reply", "session", session, "method", req.Method, "error", err)
		return nil
	}

	if err := writer.WriteLine(data); err != nil {
		if isClosedPipe(err) {
			return fmt.Errorf("write response: %w", err)
		}
		log.Warn("failed to write reply", "session", session, "method", req.Method, "error", err)
	}
	return nil
}

// ParseRequest decodes one line. It reports false for anything that is not
// a JSON object. A non-string method becomes "" and the id is kept as the
// exact bytes the client sent.
func ParseRequest(line []byte) (*Request, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(line), &fields); err != nil || fields == nil {
		return nil, false
	}

	req := &Request{
		Params: fields["params"],
	}
	if raw, ok := fields["method"]; ok {
		_ = json.Unmarshal(raw, &req.Method)
	}
	if raw, ok := fields["jsonrpc"]; ok {
		_ = json.Unmarshal(raw, &req.JSONRPC)
	}
	if raw, ok := fields["id"]; ok {
		req.ID = raw
	}
	return req, true
}

// EncodeResponse renders resp as one newline-terminated line.
func EncodeResponse(resp *Response) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed)
}
