package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/audit"
	"github.com/ericksa/legalyze/internal/workers"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	auditor, err := audit.NewAuditor(dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = auditor.Close() })
	return NewHandler(workers.NewAnalysisWorker(nil), auditor, nil)
}

func TestExecuteToolJournals(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.ExecuteTool(context.Background(), "analysis_qa", json.RawMessage(`{"text":"lease","question":"Can I terminate?"}`))
	require.NoError(t, err)
	var resp analysis.QAResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Contains(t, resp.Answer, "terminate")

	_, err = h.ExecuteTool(context.Background(), "analysis_simplify", json.RawMessage(`{"text":" "}`))
	require.Error(t, err)
	assert.True(t, workers.IsBadRequest(err))

	logs, err := h.Logs(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "analysis_simplify", logs[0].Operation)
	assert.Equal(t, "Empty document text", logs[0].Error)
	assert.Equal(t, "analysis_qa", logs[1].Operation)
}

func TestExecuteToolUnknown(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.ExecuteTool(context.Background(), "analysis_", nil)
	assert.Error(t, err)
	_, err = h.ExecuteTool(context.Background(), "shell_exec", nil)
	assert.Error(t, err)
}

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestSetWorker(t *testing.T) {
	h := newTestHandler(t)
	args := json.RawMessage(`{"text":"rental agreement"}`)

	_, err := h.ExecuteTool(context.Background(), "analysis_simplify", args)
	require.NoError(t, err)

	require.NoError(t, h.SetWorker("analysis", workers.NewAnalysisWorker(failingGenerator{})))
	_, err = h.ExecuteTool(context.Background(), "analysis_simplify", args)
	assert.ErrorContains(t, err, "quota exceeded")

	assert.Error(t, h.SetWorker("shell", workers.NewAnalysisWorker(nil)))
}

func connect(t *testing.T, h *Handler) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := h.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestMCPListTools(t *testing.T) {
	cs := connect(t, newTestHandler(t))

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"analysis_simplify", "analysis_redflags", "analysis_qa", "analysis_improve", "analysis_suggestions",
	}, names)
}

func TestMCPCallTool(t *testing.T) {
	cs := connect(t, newTestHandler(t))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "analysis_redflags",
		Arguments: map[string]any{"text": "The tenant pays ₹500 per day late."},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var flags []analysis.RedFlag
	require.NoError(t, json.Unmarshal([]byte(text.Text), &flags))
	assert.Len(t, flags, 6)
}

func TestMCPCallToolBadInput(t *testing.T) {
	cs := connect(t, newTestHandler(t))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "analysis_improve",
		Arguments: map[string]any{"text": "   "},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Empty contract text", text.Text)
}
