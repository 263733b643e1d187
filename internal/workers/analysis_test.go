package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericksa/legalyze/internal/analysis"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

const leaseText = "The tenant pays ₹500 per day after 5 days grace period on late rent."

func TestAnalysisWorker_Tools(t *testing.T) {
	w := NewAnalysisWorker(nil)
	var names []string
	for _, tool := range w.GetTools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"simplify", "redflags", "qa", "improve", "suggestions"}, names)
}

func TestAnalysisWorker_MissingAndBlankText(t *testing.T) {
	w := NewAnalysisWorker(nil)
	tests := []struct {
		tool  string
		input string
		msg   string
	}{
		{"simplify", `{}`, "No document text provided"},
		{"simplify", `{"text":"   "}`, "Empty document text"},
		{"redflags", `not json`, "No document text provided"},
		{"redflags", `{"text":"\n"}`, "Empty document text"},
		{"qa", `{"text":"lease"}`, "Document text and question are required"},
		{"qa", `{"text":"lease","question":"  "}`, "Both document text and question must be provided"},
		{"improve", `{}`, "No contract text provided"},
		{"suggestions", `{"text":""}`, "Empty contract text"},
	}
	for _, tt := range tests {
		t.Run(tt.tool+" "+tt.msg, func(t *testing.T) {
			_, err := w.Execute(context.Background(), tt.tool, json.RawMessage(tt.input))
			require.Error(t, err)
			assert.True(t, IsBadRequest(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestAnalysisWorker_UnknownTool(t *testing.T) {
	_, err := NewAnalysisWorker(nil).Execute(context.Background(), "translate", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.False(t, IsBadRequest(err))
}

func TestAnalysisWorker_MockSimplify(t *testing.T) {
	w := NewAnalysisWorker(nil)
	assert.True(t, w.MockMode())

	out, err := w.Execute(context.Background(), "analysis_simplify", json.RawMessage(`{"text":"lease"}`))
	require.NoError(t, err)

	var resp analysis.SimplifyResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Contains(t, resp.SimplifiedText, "SIMPLIFIED SUMMARY")
	assert.Contains(t, resp.SimplifiedText, "₹25,000")
}

func TestAnalysisWorker_MockRedFlags(t *testing.T) {
	flags, err := NewAnalysisWorker(nil).RedFlags(context.Background(), "lease")
	require.NoError(t, err)
	require.Len(t, flags, 6)

	counts := map[analysis.RiskLevel]int{}
	for _, f := range flags {
		assert.True(t, f.Risk.Valid())
		counts[f.Risk]++
	}
	assert.Equal(t, map[analysis.RiskLevel]int{analysis.RiskSafe: 1, analysis.RiskModerate: 3, analysis.RiskDangerous: 2}, counts)
}

func TestAnalysisWorker_MockQARouting(t *testing.T) {
	w := NewAnalysisWorker(nil)
	tests := map[string]string{
		"What are the risks?":              mockRiskAnswer,
		"Is anything DANGEROUS here?":      mockRiskAnswer,
		"How do I terminate early?":        mockTerminateAnswer,
		"Can I leave before the term ends": mockTerminateAnswer,
		"How much money do I owe?":         mockFinancialAnswer,
		"When do I pay rent?":              mockFinancialAnswer,
		"Who is the landlord?":             mockDefaultAnswer,
		"What is the exit cost?":           mockTerminateAnswer,
	}
	for q, want := range tests {
		got, err := w.Ask(context.Background(), "lease", q, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, q)
	}
}

func TestAnalysisWorker_MockImprove(t *testing.T) {
	out, err := NewAnalysisWorker(nil).Improve(context.Background(), "  "+leaseText+"  ")
	require.NoError(t, err)
	assert.Equal(t, "The tenant pays ₹200 per day after 7 days grace period on late rent.", out)

	unchanged, err := NewAnalysisWorker(nil).Improve(context.Background(), "Nothing to fix.")
	require.NoError(t, err)
	assert.Equal(t, "Nothing to fix.", unchanged)
}

func TestAnalysisWorker_MockSuggestions(t *testing.T) {
	out, err := NewAnalysisWorker(nil).Execute(context.Background(), "suggestions", json.RawMessage(`{"text":"lease"}`))
	require.NoError(t, err)

	var resp analysis.SuggestionsResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Len(t, resp.Suggestions, 4)
	assert.Equal(t, "Reduce Late Payment Penalty", resp.Suggestions[0].Title)
	for _, s := range resp.Suggestions {
		assert.False(t, s.HasReplacement())
	}
}

func TestAnalysisWorker_FencedRedFlags(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n[{\"clause\":\"Late fee\",\"risk\":\"Dangerous\",\"explanation\":\"steep\"}]\n```"}
	flags, err := NewAnalysisWorker(gen).RedFlags(context.Background(), leaseText)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, analysis.RedFlag{Clause: "Late fee", Risk: analysis.RiskDangerous, Explanation: "steep"}, flags[0])
	assert.Contains(t, gen.prompts[0], leaseText)
}

func TestAnalysisWorker_UnparseableFallbacks(t *testing.T) {
	gen := &fakeGenerator{reply: "I could not find any clauses, sorry."}
	w := NewAnalysisWorker(gen)

	flags, err := w.RedFlags(context.Background(), leaseText)
	require.NoError(t, err)
	assert.Equal(t, []analysis.RedFlag{redFlagFallback}, flags)

	suggestions, err := w.Suggestions(context.Background(), leaseText)
	require.NoError(t, err)
	assert.Equal(t, []analysis.Suggestion{suggestionFallback}, suggestions)
}

func TestAnalysisWorker_SuggestionsWithProse(t *testing.T) {
	gen := &fakeGenerator{reply: "Here you go:\n[{\"title\":\"Cap increases\",\"description\":\"8% max\"}]\nHope it helps."}
	suggestions, err := NewAnalysisWorker(gen).Suggestions(context.Background(), leaseText)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Cap increases", suggestions[0].Title)
}

func TestAnalysisWorker_UnknownRiskIsModerate(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"clause":"c","risk":"critical","explanation":"e"}]`}
	flags, err := NewAnalysisWorker(gen).RedFlags(context.Background(), leaseText)
	require.NoError(t, err)
	assert.Equal(t, analysis.RiskModerate, flags[0].Risk)
}

func TestAnalysisWorker_QAHistoryWindow(t *testing.T) {
	gen := &fakeGenerator{reply: "It is ₹25,000."}
	history := []analysis.ChatTurn{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
		{Question: "q4", Answer: "a4"},
	}

	answer, err := NewAnalysisWorker(gen).Ask(context.Background(), leaseText, "What is the rent?", history)
	require.NoError(t, err)
	assert.Equal(t, "It is ₹25,000.", answer)

	prompt := gen.prompts[0]
	assert.NotContains(t, prompt, "Q: q1")
	for _, q := range []string{"Q: q2", "Q: q3", "Q: q4", "User's question: What is the rent?"} {
		assert.Contains(t, prompt, q)
	}
}

func TestAnalysisWorker_GeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	_, err := NewAnalysisWorker(gen).Execute(context.Background(), "improve", json.RawMessage(`{"text":"lease"}`))
	require.Error(t, err)
	assert.False(t, IsBadRequest(err))
	assert.Equal(t, "Failed to improve contract. Please try again.", FailureMessage(analysis.EndpointImprove))
}

func TestAnalysisWorker_CacheHit(t *testing.T) {
	gen := &fakeGenerator{reply: "plain summary"}
	w := NewAnalysisWorker(gen, WithResponseCache(time.Minute))

	for i := 0; i < 3; i++ {
		out, err := w.Simplify(context.Background(), leaseText)
		require.NoError(t, err)
		assert.Equal(t, "plain summary", out)
	}
	assert.Equal(t, 1, gen.calls)

	_, err := w.Simplify(context.Background(), leaseText+" Pets allowed.")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestAnalysisWorker_NoCacheByDefault(t *testing.T) {
	gen := &fakeGenerator{reply: "plain summary"}
	w := NewAnalysisWorker(gen, WithResponseCache(0))
	_, _ = w.Simplify(context.Background(), leaseText)
	_, _ = w.Simplify(context.Background(), leaseText)
	assert.Equal(t, 2, gen.calls)
}

func TestUnmarshalModelJSON(t *testing.T) {
	var out []map[string]string
	require.NoError(t, unmarshalModelJSON("```\n[{\"a\":\"b\"}]\n```", &out))
	assert.Equal(t, "b", out[0]["a"])

	assert.Error(t, unmarshalModelJSON("```json\n{not json\n```", &out))
	assert.True(t, strings.HasPrefix(truncate("abcdef", 3), "abc"))
}
