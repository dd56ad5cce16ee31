package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/alucardeht/x-mcp/internal/logger"
	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/pkg/protocol"
	"github.com/alucardeht/x-mcp/pkg/version"
)

var log = logger.ForComponent("mcp")

type Request = protocol.JSONRPCRequest
type Response = protocol.JSONRPCResponse

// ServerInfo is the static identity reported by initialize. It is built
// once at startup and never changes.
type ServerInfo struct {
	Name              string
	Version           string
	ProtocolVersion   string
	SupportedVersions []string
}

func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:              version.ServerName,
		Version:           version.Version,
		ProtocolVersion:   version.ProtocolVersion,
		SupportedVersions: version.SupportedProtocolVersions,
	}
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Handler struct {
	registry  *tools.Registry
	info      ServerInfo
	startTime time.Time

	mu          sync.Mutex
	initialized bool
	clientInfo  ClientInfo
}

func NewHandler(registry *tools.Registry, info ServerInfo) *Handler {
	return &Handler{
		registry:  registry,
		info:      info,
		startTime: time.Now(),
	}
}

func (h *Handler) Registry() *tools.Registry {
	return h.registry
}

func (h *Handler) Uptime() time.Duration {
	return time.Since(h.startTime)
}

// Handle produces the reply for one request, or nil when the request is a
// notification that needs none.
func (h *Handler) Handle(ctx context.Context, req *Request) *Response {
	if req.IsNotification() && strings.HasPrefix(req.Method, "notifications/") {
		h.handleNotification(req.Method)
		return nil
	}

	resp := &Response{
		JSONRPC: protocol.Version,
		ID:      req.ID,
	}

	result, rpcErr := h.Dispatch(ctx, req.Method, req.Params)
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	return resp
}

// Dispatch routes a method to its handler. Only an unknown method or a
// broken reply yields a protocol error; tool failures travel inside the
// result.
func (h *Handler) Dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, *protocol.JSONRPCError) {
	switch method {
	case "initialize":
		return h.handleInitialize(params), nil
	case "ping":
		return map[string]interface{}{}, nil
	case "tools/list":
		return h.ListTools(), nil
	case "tools/call":
		return h.handleCallTool(ctx, params)
	case "notifications/initialized", "notifications/cancelled":
		h.handleNotification(method)
		return map[string]interface{}{}, nil
	default:
		return nil, protocol.NewError(protocol.CodeMethodNotFound, "Method not found")
	}
}

func (h *Handler) handleInitialize(params json.RawMessage) *protocol.InitializeResult {
	var initReq struct {
		ProtocolVersion string     `json:"protocolVersion"`
		ClientInfo      ClientInfo `json:"clientInfo"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &initReq); err != nil {
			log.Debug("ignoring malformed initialize params", "error", err)
		}
	}

	h.mu.Lock()
	h.clientInfo = initReq.ClientInfo
	h.mu.Unlock()

	negotiated := h.negotiateProtocolVersion(initReq.ProtocolVersion)
	log.Info("client initialized",
		"client", initReq.ClientInfo.Name,
		"client_version", initReq.ClientInfo.Version,
		"protocol", negotiated)

	return &protocol.InitializeResult{
		ProtocolVersion: negotiated,
		Capabilities: map[string]interface{}{
			"tools": map[string]interface{}{"listChanged": false},
		},
		ServerInfo: protocol.ServerInfo{
			Name:    h.info.Name,
			Version: h.info.Version,
		},
	}
}

func (h *Handler) negotiateProtocolVersion(clientVersion string) string {
	for _, v := range h.info.SupportedVersions {
		if clientVersion == v {
			return v
		}
	}
	return h.info.ProtocolVersion
}

func (h *Handler) ListTools() map[string]interface{} {
	list := h.registry.List()
	defs := make([]protocol.Tool, 0, len(list))

	for _, t := range list {
		def := protocol.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}
		if annotated, ok := t.(tools.AnnotatedTool); ok {
			def.Title = annotated.Title()
			def.Annotations = annotated.Annotations()
		}
		defs = append(defs, def)
	}

	return map[string]interface{}{
		"tools": defs,
	}
}

func (h *Handler) handleNotification(method string) {
	switch method {
	case "notifications/initialized":
		h.mu.Lock()
		h.initialized = true
		h.mu.Unlock()
	default:
		log.Debug("notification ignored", "method", method)
	}
}

func (h *Handler) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initialized
}

func (h *Handler) handleCallTool(ctx context.Context, params json.RawMessage) (interface{}, *protocol.JSONRPCError) {
	var call protocol.CallToolParams
	var env tools.Envelope
	if err := tools.DecodeArguments(params, &call); err != nil {
		env = tools.Failure(err.Error())
	} else {
		env = h.CallTool(ctx, call.Name, call.Arguments)
	}

	text, err := env.Pretty()
	if err != nil {
		log.Error("failed to render tool result", "tool", call.Name, "error", err)
		return nil, protocol.NewError(protocol.CodeInternalError, err.Error())
	}

	return &protocol.CallToolResult{
		Content: []protocol.ContentItem{{Type: "text", Text: text}},
		IsError: !env.Succeeded(),
	}, nil
}

// CallTool runs one tool and returns its envelope.
func (h *Handler) CallTool(ctx context.Context, name string, args json.RawMessage) tools.Envelope {
	start := time.Now()
	env := h.registry.Call(ctx, name, args)

	attrs := []any{"tool", name, "success", env.Succeeded(), "duration", time.Since(start)}
	if !env.Succeeded() {
		attrs = append(attrs, "error", env["error"])
	}
	log.Debug("tool call", attrs...)
	return env
}
