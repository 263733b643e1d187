package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/llm"
)

// BadRequestError is an input problem the caller can fix. The HTTP layer
// answers it with 400 and {"error": Message}.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// IsBadRequest reports whether err carries a BadRequestError.
func IsBadRequest(err error) bool {
	var br *BadRequestError
	return errors.As(err, &br)
}

// FailureMessage is the generic message returned for an operation that
// failed after its input was accepted.
func FailureMessage(op analysis.Endpoint) string {
	switch op {
	case analysis.EndpointRedFlags:
		return "Failed to analyze document. Please try again."
	case analysis.EndpointQA:
		return "Failed to process question. Please try again."
	case analysis.EndpointImprove:
		return "Failed to improve contract. Please try again."
	case analysis.EndpointSuggestions:
		return "Failed to generate suggestions. Please try again."
	default:
		return "Failed to process document. Please try again."
	}
}

// historyWindow is how many confirmed turns are quoted back to the model.
const historyWindow = 3

// AnalysisWorker implements the five contract analysis operations over a
// language model. Without a generator it answers with fixed sample data.
type AnalysisWorker struct {
	gen    llm.Generator
	cache  *cache.Cache
	logger *zap.Logger
}

type AnalysisOption func(*AnalysisWorker)

// WithResponseCache caches model output per input for ttl. A zero ttl
// disables caching.
func WithResponseCache(ttl time.Duration) AnalysisOption {
	return func(w *AnalysisWorker) {
		if ttl > 0 {
			w.cache = cache.New(ttl, 2*ttl)
		}
	}
}

func WithAnalysisLogger(l *zap.Logger) AnalysisOption {
	return func(w *AnalysisWorker) { w.logger = l }
}

func NewAnalysisWorker(gen llm.Generator, opts ...AnalysisOption) *AnalysisWorker {
	w := &AnalysisWorker{gen: gen, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// MockMode reports whether responses come from the built-in sample data.
func (w *AnalysisWorker) MockMode() bool {
	return w.gen == nil
}

func (w *AnalysisWorker) GetTools() []ToolDef {
	return []ToolDef{
		{Name: string(analysis.EndpointSimplify), Description: "Summarize a legal document in plain language"},
		{Name: string(analysis.EndpointRedFlags), Description: "List risky clauses with a safe/moderate/dangerous rating"},
		{Name: string(analysis.EndpointQA), Description: "Answer a question about a legal document"},
		{Name: string(analysis.EndpointImprove), Description: "Rewrite a contract with fairer terms"},
		{Name: string(analysis.EndpointSuggestions), Description: "Suggest improvements to a contract"},
	}
}

// request mirrors the JSON bodies of all five operations. Pointers tell a
// missing field apart from a blank one.
type request struct {
	Text     *string             `json:"text"`
	Question *string             `json:"question"`
	History  []analysis.ChatTurn `json:"history"`
}

func (w *AnalysisWorker) Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error) {
	op := analysis.Endpoint(strings.TrimPrefix(name, "analysis_"))

	var req request
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			req = request{}
		}
	}

	switch op {
	case analysis.EndpointSimplify:
		if req.Text == nil {
			return nil, &BadRequestError{Message: "No document text provided"}
		}
		out, err := w.Simplify(ctx, *req.Text)
		if err != nil {
			return nil, err
		}
		return json.Marshal(analysis.SimplifyResponse{SimplifiedText: out})

	case analysis.EndpointRedFlags:
		if req.Text == nil {
			return nil, &BadRequestError{Message: "No document text provided"}
		}
		out, err := w.RedFlags(ctx, *req.Text)
		if err != nil {
			return nil, err
		}
		return json.Marshal(out)

	case analysis.EndpointQA:
		if req.Text == nil || req.Question == nil {
			return nil, &BadRequestError{Message: "Document text and question are required"}
		}
		out, err := w.Ask(ctx, *req.Text, *req.Question, req.History)
		if err != nil {
			return nil, err
		}
		return json.Marshal(analysis.QAResponse{Answer: out})

	case analysis.EndpointImprove:
		if req.Text == nil {
			return nil, &BadRequestError{Message: "No contract text provided"}
		}
		out, err := w.Improve(ctx, *req.Text)
		if err != nil {
			return nil, err
		}
		return json.Marshal(analysis.ImproveResponse{ImprovedText: out})

	case analysis.EndpointSuggestions:
		if req.Text == nil {
			return nil, &BadRequestError{Message: "No contract text provided"}
		}
		out, err := w.Suggestions(ctx, *req.Text)
		if err != nil {
			return nil, err
		}
		return json.Marshal(analysis.SuggestionsResponse{Suggestions: out})

	default:
		return nil, fmt.Errorf("unknown analysis tool: %s", name)
	}
}

func (w *AnalysisWorker) Simplify(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &BadRequestError{Message: "Empty document text"}
	}
	if w.MockMode() {
		return mockSimplified, nil
	}
	return w.generate(ctx, analysis.EndpointSimplify, simplifySystem, simplifyPrompt(text))
}

func (w *AnalysisWorker) RedFlags(ctx context.Context, text string) ([]analysis.RedFlag, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &BadRequestError{Message: "Empty document text"}
	}
	if w.MockMode() {
		return mockRedFlags(), nil
	}

	raw, err := w.generate(ctx, analysis.EndpointRedFlags, redFlagsSystem, redFlagsPrompt(text))
	if err != nil {
		return nil, err
	}
	var flags []analysis.RedFlag
	if err := unmarshalModelJSON(raw, &flags); err != nil {
		w.logger.Error("invalid red flag response", zap.Error(err), zap.String("raw", truncate(raw, 500)))
		return []analysis.RedFlag{redFlagFallback}, nil
	}
	for i := range flags {
		flags[i].Risk = normalizeRisk(flags[i].Risk)
	}
	w.logger.Info("red flag analysis completed", zap.Int("clauses", len(flags)))
	return flags, nil
}

func (w *AnalysisWorker) Ask(ctx context.Context, text, question string, history []analysis.ChatTurn) (string, error) {
	text = strings.TrimSpace(text)
	question = strings.TrimSpace(question)
	if text == "" || question == "" {
		return "", &BadRequestError{Message: "Both document text and question must be provided"}
	}
	if w.MockMode() {
		return mockAnswer(question), nil
	}
	return w.generate(ctx, analysis.EndpointQA, qaSystem, qaPrompt(text, question, recentTurns(history)))
}

func (w *AnalysisWorker) Improve(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &BadRequestError{Message: "Empty contract text"}
	}
	if w.MockMode() {
		return mockImprove(text), nil
	}
	return w.generate(ctx, analysis.EndpointImprove, improveSystem, improvePrompt(text))
}

func (w *AnalysisWorker) Suggestions(ctx context.Context, text string) ([]analysis.Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &BadRequestError{Message: "Empty contract text"}
	}
	if w.MockMode() {
		return mockSuggestions(), nil
	}

	raw, err := w.generate(ctx, analysis.EndpointSuggestions, suggestionsSystem, suggestionsPrompt(text))
	if err != nil {
		return nil, err
	}
	var suggestions []analysis.Suggestion
	if err := unmarshalModelJSON(raw, &suggestions); err != nil {
		w.logger.Error("invalid suggestions response", zap.Error(err), zap.String("raw", truncate(raw, 500)))
		return []analysis.Suggestion{suggestionFallback}, nil
	}
	w.logger.Info("suggestions generated", zap.Int("count", len(suggestions)))
	return suggestions, nil
}

// generate calls the model, consulting the response cache first.
func (w *AnalysisWorker) generate(ctx context.Context, op analysis.Endpoint, system, prompt string) (string, error) {
	key := cacheKey(op, system, prompt)
	if w.cache != nil {
		if cached, ok := w.cache.Get(key); ok {
			w.logger.Debug("cache hit", zap.String("op", string(op)))
			return cached.(string), nil
		}
	}

	start := time.Now()
	out, err := w.gen.Generate(ctx, system, prompt)
	if err != nil {
		w.logger.Error("model call failed", zap.String("op", string(op)), zap.Error(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	w.logger.Info("model call completed", zap.String("op", string(op)), zap.Duration("took", time.Since(start)))

	if w.cache != nil {
		w.cache.SetDefault(key, out)
	}
	return out, nil
}

func cacheKey(op analysis.Endpoint, system, prompt string) string {
	sum := sha256.Sum256([]byte(system + "\x00" + prompt))
	return string(op) + ":" + hex.EncodeToString(sum[:])
}

func recentTurns(history []analysis.ChatTurn) []analysis.ChatTurn {
	if len(history) > historyWindow {
		return history[len(history)-historyWindow:]
	}
	return history
}

// unmarshalModelJSON parses model output that may be wrapped in a markdown
// code fence or surrounded by prose.
func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}
	return errors.New("invalid JSON response from model")
}

func normalizeRisk(r analysis.RiskLevel) analysis.RiskLevel {
	lower := analysis.RiskLevel(strings.ToLower(strings.TrimSpace(string(r))))
	if lower.Valid() {
		return lower
	}
	return analysis.RiskModerate
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
