package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/hbastos/intervals-icu-mcp/internal/logger"
	"github.com/hbastos/intervals-icu-mcp/internal/tools"
	"github.com/hbastos/intervals-icu-mcp/pkg/protocol"
	"github.com/hbastos/intervals-icu-mcp/pkg/version"
)

// toolTimeout bounds a single tools/call so a wedged upstream cannot stall
// the connection indefinitely.
const toolTimeout = 2 * time.Minute

// serverName is reported to clients during initialize.
const serverName = "intervals-icu-mcp"

// Handler dispatches MCP methods. It is transport-free: the jsonrpc2 glue
// lives in Server, so handlers are unit-testable without a connection.
type Handler struct {
	registry *tools.Registry
	log      *slog.Logger

	mu          sync.Mutex
	initialized bool
	clientInfo  protocol.ClientInfo
}

func NewHandler(registry *tools.Registry) *Handler {
	return &Handler{
		registry: registry,
		log:      logger.ForComponent("mcp"),
	}
}

// Handle executes one request method and returns either a result or a
// JSON-RPC error.
func (h *Handler) Handle(ctx context.Context, method string, params *json.RawMessage) (any, *jsonrpc2.Error) {
	switch method {
	case "initialize":
		return h.handleInitialize(params)
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return h.handleListTools(), nil
	case "tools/call":
		return h.handleCallTool(ctx, params)
	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", method),
		}
	}
}

// HandleNotification processes methods that never get a reply.
func (h *Handler) HandleNotification(method string) {
	switch method {
	case "notifications/initialized":
		h.mu.Lock()
		h.initialized = true
		h.mu.Unlock()
		h.log.Debug("client completed initialization")
	default:
		h.log.Debug("ignoring notification", "method", method)
	}
}

func (h *Handler) handleInitialize(params *json.RawMessage) (any, *jsonrpc2.Error) {
	var initReq initializeParams
	if params != nil {
		if err := json.Unmarshal(*params, &initReq); err != nil {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInvalidParams,
				Message: fmt.Sprintf("failed to parse initialize request: %v", err),
			}
		}
	}

	h.mu.Lock()
	h.clientInfo = protocol.ClientInfo{Name: initReq.ClientInfo.Name, Version: initReq.ClientInfo.Version}
	h.mu.Unlock()

	negotiated := negotiateProtocolVersion(initReq.ProtocolVersion)
	h.log.Info("initialize",
		"client", initReq.ClientInfo.Name,
		"client_version", initReq.ClientInfo.Version,
		"protocol_version", negotiated)

	return &protocol.InitializeResult{
		ProtocolVersion: negotiated,
		Capabilities: map[string]any{
			"tools": map[string]any{},
		},
		ServerInfo: protocol.ServerInfo{
			Name:    serverName,
			Version: version.Version,
		},
	}, nil
}

func negotiateProtocolVersion(clientVersion string) string {
	for _, v := range version.SupportedProtocolVersions {
		if clientVersion == v {
			return v
		}
	}
	return version.ProtocolVersion
}

func (h *Handler) handleListTools() *protocol.ListToolsResult {
	list := h.registry.List()
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })

	descriptors := make([]protocol.Tool, len(list))
	for i, t := range list {
		descriptors[i] = protocol.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}
		if annotated, ok := t.(tools.AnnotatedTool); ok {
			descriptors[i].Title = annotated.Title()
			descriptors[i].Annotations = annotated.Annotations()
		}
	}

	return &protocol.ListToolsResult{Tools: descriptors}
}

func (h *Handler) handleCallTool(ctx context.Context, params *json.RawMessage) (result any, rpcErr *jsonrpc2.Error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			rpcErr = &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInternalError,
				Message: fmt.Sprintf("tool execution panicked: %v", r),
			}
			h.log.Error("tool panic recovered",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	var call callToolParams
	if params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "params required"}
	}
	if err := json.Unmarshal(*params, &call); err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: fmt.Sprintf("failed to parse tool call request: %v", err),
		}
	}
	if call.Name == "" {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "tool name is required"}
	}
	if call.Arguments == nil {
		call.Arguments = json.RawMessage(`{}`)
	}

	if _, ok := h.registry.Get(call.Name); !ok {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("Tool not found: %s", call.Name),
		}
	}

	h.log.Debug("tool call", "tool", call.Name)
	start := time.Now()

	value, err := h.registry.ExecuteWithTimeout(ctx, call.Name, call.Arguments, toolTimeout)
	if err != nil {
		// Tool-level failures (validation, upstream, transport, decode)
		// come back as structured failure results, not protocol errors.
		h.log.Warn("tool call failed",
			"tool", call.Name,
			"duration", time.Since(start),
			"error", err)
		return protocol.ErrorResult(err.Error()), nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInternalError,
			Message: fmt.Sprintf("failed to marshal result: %v", err),
		}
	}

	h.log.Info("tool call complete", "tool", call.Name, "duration", time.Since(start))
	return protocol.TextResult(string(payload)), nil
}
