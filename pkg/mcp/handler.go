package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/audit"
	"github.com/ericksa/legalyze/internal/workers"
)

const Version = "1.0.0"

type Worker interface {
	GetTools() []workers.ToolDef
	Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error)
}

// Handler routes tool calls to workers and journals each call. The same
// handler backs the HTTP API and the MCP tool server.
type Handler struct {
	audit   *audit.Auditor
	logger  *zap.Logger
	mu      sync.RWMutex
	workers map[string]Worker
	server  *mcp.Server
}

func NewHandler(analysisWorker Worker, auditor *audit.Auditor, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		audit:   auditor,
		logger:  logger,
		workers: map[string]Worker{"analysis": analysisWorker},
	}
	h.initMCPServer()
	return h
}

type textInput struct {
	Text string `json:"text" jsonschema:"the full contract or legal document text"`
}

type qaInput struct {
	Text     string              `json:"text" jsonschema:"the full contract or legal document text"`
	Question string              `json:"question" jsonschema:"the question to answer about the document"`
	History  []analysis.ChatTurn `json:"history,omitempty" jsonschema:"earlier question and answer pairs, oldest first"`
}

func (h *Handler) initMCPServer() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "Legalyze",
		Version: Version,
	}, nil)

	for name, worker := range h.workers {
		for _, tool := range worker.GetTools() {
			toolName := fmt.Sprintf("%s_%s", name, tool.Name)
			if tool.Name == string(analysis.EndpointQA) {
				addTool[qaInput](h, server, toolName, tool.Description)
			} else {
				addTool[textInput](h, server, toolName, tool.Description)
			}
		}
	}

	h.server = server
}

func addTool[In any](h *Handler, server *mcp.Server, toolName, description string) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        toolName,
		Description: description,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		inputBytes, _ := json.Marshal(input)
		result, err := h.ExecuteTool(ctx, toolName, inputBytes)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: err.Error()},
				},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(result)},
			},
		}, nil, nil
	})
}

// Server exposes the underlying MCP server.
func (h *Handler) Server() *mcp.Server {
	return h.server
}

// Serve runs the MCP tool server over stdin/stdout until ctx is done or the
// peer disconnects.
func (h *Handler) Serve(ctx context.Context) error {
	return h.server.Run(ctx, &mcp.StdioTransport{})
}

// SetWorker replaces the worker registered under name. MCP tools stay
// registered under their startup names, so w must serve the same tools.
func (h *Handler) SetWorker(name string, w Worker) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.workers[name]; !ok {
		return fmt.Errorf("unknown worker: %s", name)
	}
	h.workers[name] = w
	return nil
}

func (h *Handler) lookup(toolName string) (Worker, string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for name, worker := range h.workers {
		prefix := name + "_"
		if strings.HasPrefix(toolName, prefix) && len(toolName) > len(prefix) {
			return worker, prefix, true
		}
	}
	return nil, "", false
}

// ExecuteTool runs a tool addressed as "<worker>_<tool>".
func (h *Handler) ExecuteTool(ctx context.Context, toolName string, args json.RawMessage) ([]byte, error) {
	if worker, prefix, ok := h.lookup(toolName); ok {
		start := time.Now()
		result, err := worker.Execute(ctx, strings.TrimPrefix(toolName, prefix), args)
		took := time.Since(start)
		h.audit.Log(toolName, len(args), took, err)
		if err != nil {
			h.logger.Warn("tool failed", zap.String("tool", toolName), zap.Duration("took", took), zap.Error(err))
		} else {
			h.logger.Debug("tool completed", zap.String("tool", toolName), zap.Duration("took", took))
		}
		return result, err
	}
	return nil, fmt.Errorf("tool not found: %s", toolName)
}

// Logs returns the newest journal entries.
func (h *Handler) Logs(limit int) ([]audit.AuditEntry, error) {
	return h.audit.GetLogs(limit)
}
