package session

import (
	"context"
	"errors"
	"sync"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/notice"
)

// fakeAnalyzer counts calls per endpoint and delegates to optional hooks.
type fakeAnalyzer struct {
	mu    sync.Mutex
	calls map[analysis.Endpoint]int
	seen  [][]analysis.ChatTurn

	simplify    func(ctx context.Context, text string) (string, error)
	redFlags    func(ctx context.Context, text string) ([]analysis.RedFlag, error)
	ask         func(ctx context.Context, text, question string) (string, error)
	improve     func(ctx context.Context, text string) (string, error)
	suggestions func(ctx context.Context, text string) ([]analysis.Suggestion, error)
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{calls: make(map[analysis.Endpoint]int)}
}

func (f *fakeAnalyzer) count(e analysis.Endpoint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[e]
}

func (f *fakeAnalyzer) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAnalyzer) hit(e analysis.Endpoint) {
	f.mu.Lock()
	f.calls[e]++
	f.mu.Unlock()
}

func (f *fakeAnalyzer) Simplify(ctx context.Context, text string) (string, error) {
	f.hit(analysis.EndpointSimplify)
	if f.simplify != nil {
		return f.simplify(ctx, text)
	}
	return "simple: " + text, nil
}

func (f *fakeAnalyzer) RedFlags(ctx context.Context, text string) ([]analysis.RedFlag, error) {
	f.hit(analysis.EndpointRedFlags)
	if f.redFlags != nil {
		return f.redFlags(ctx, text)
	}
	return []analysis.RedFlag{{Clause: "Late fee", Explanation: "steep", Risk: analysis.RiskModerate}}, nil
}

func (f *fakeAnalyzer) Ask(ctx context.Context, text, question string, history []analysis.ChatTurn) (string, error) {
	f.hit(analysis.EndpointQA)
	f.mu.Lock()
	f.seen = append(f.seen, append([]analysis.ChatTurn(nil), history...))
	f.mu.Unlock()
	if f.ask != nil {
		return f.ask(ctx, text, question)
	}
	return "answer to " + question, nil
}

func (f *fakeAnalyzer) Improve(ctx context.Context, text string) (string, error) {
	f.hit(analysis.EndpointImprove)
	if f.improve != nil {
		return f.improve(ctx, text)
	}
	return "improved " + text, nil
}

func (f *fakeAnalyzer) Suggestions(ctx context.Context, text string) ([]analysis.Suggestion, error) {
	f.hit(analysis.EndpointSuggestions)
	if f.suggestions != nil {
		return f.suggestions(ctx, text)
	}
	return []analysis.Suggestion{{Title: "for " + text}}, nil
}

var errBackend = &analysis.RemoteError{Endpoint: "test", Message: "Failed to process document. Please try again."}

var errNetwork = errors.New("connection refused")

// recorder is a Sink that keeps everything it was shown.
type recorder struct {
	mu      sync.Mutex
	notices []notice.Notice
	events  []EventKind
}

func (r *recorder) Notify(n notice.Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) Render(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev.Kind)
	r.mu.Unlock()
}

func (r *recorder) lastNotice() notice.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return notice.Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Title)
	}
	return out
}

func (r *recorder) sawEvent(kind EventKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.events {
		if k == kind {
			return true
		}
	}
	return false
}

func newTestSession(opts ...Option) (*Session, *fakeAnalyzer, *recorder) {
	fa := newFakeAnalyzer()
	rec := &recorder{}
	s := New(fa, append([]Option{WithSink(rec)}, opts...)...)
	return s, fa, rec
}

func strPtr(s string) *string { return &s }
