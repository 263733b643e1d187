// Package session holds the per-user document session: the loaded contract,
// the active mode, in-flight request flags, the Q&A history and the sandbox
// draft. All state lives in one Session value; presentation code observes it
// through Sink subscriptions and never mutates it directly.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/document"
	"github.com/ericksa/legalyze/internal/notice"
)

// Mode is the active analysis or interaction tab.
type Mode string

const (
	ModeSimplified Mode = "simplified"
	ModeRedFlags   Mode = "redflags"
	ModeSandbox    Mode = "sandbox"
	ModeQA         Mode = "qa"
)

var Modes = []Mode{ModeSimplified, ModeRedFlags, ModeSandbox, ModeQA}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Analyzer is the backend surface the session depends on.
type Analyzer interface {
	Simplify(ctx context.Context, text string) (string, error)
	RedFlags(ctx context.Context, text string) ([]analysis.RedFlag, error)
	Ask(ctx context.Context, text, question string, history []analysis.ChatTurn) (string, error)
	Improve(ctx context.Context, text string) (string, error)
	Suggestions(ctx context.Context, text string) ([]analysis.Suggestion, error)
}

// Ingester turns an upload into a Document; *document.Gate satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, f document.File) (document.Document, error)
}

// Result is the outcome of the last analysis run, tagged by mode.
type Result struct {
	Mode       Mode
	Simplified string
	RedFlags   []analysis.RedFlag
}

// errInterrupted marks a backend call that never returned normally.
var errInterrupted = errors.New("request interrupted")

type Session struct {
	analyzer Analyzer
	ingester Ingester
	logger   *zap.Logger
	bg       context.Context
	fence    bool

	mu          sync.Mutex
	sinks       []Sink
	doc         document.Document
	mode        Mode
	result      *Result
	analyzing   bool
	asking      bool
	improving   bool
	history     []analysis.ChatTurn
	transcript  []Entry
	draft       string
	suggestions []analysis.Suggestion
	hasSuggest  bool
	suggestSeq  uint64

	refreshes sync.WaitGroup
}

type Option func(*Session)

func WithSink(sink Sink) Option {
	return func(s *Session) { s.sinks = append(s.sinks, sink) }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithIngester(in Ingester) Option {
	return func(s *Session) { s.ingester = in }
}

// WithContext sets the context used by background suggestion refreshes.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.bg = ctx }
}

// WithSuggestionFencing drops suggestion responses for superseded drafts.
// Off by default: the last response to complete is displayed.
func WithSuggestionFencing(enabled bool) Option {
	return func(s *Session) { s.fence = enabled }
}

func New(analyzer Analyzer, opts ...Option) *Session {
	s := &Session{
		analyzer: analyzer,
		ingester: document.NewGate(nil),
		logger:   zap.NewNop(),
		bg:       context.Background(),
		mode:     ModeSimplified,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe adds a presentation sink.
func (s *Session) Subscribe(sink Sink) {
	s.mu.Lock()
	s.sinks = append(s.sinks, sink)
	s.mu.Unlock()
}

// Wait blocks until all background suggestion refreshes have finished.
func (s *Session) Wait() {
	s.refreshes.Wait()
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Document    document.Document
	Mode        Mode
	Result      *Result
	Analyzing   bool
	Asking      bool
	Improving   bool
	History     []analysis.ChatTurn
	Transcript  []Entry
	Draft       string
	Suggestions []analysis.Suggestion
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Document:    s.doc,
		Mode:        s.mode,
		Analyzing:   s.analyzing,
		Asking:      s.asking,
		Improving:   s.improving,
		History:     append([]analysis.ChatTurn(nil), s.history...),
		Transcript:  append([]Entry(nil), s.transcript...),
		Draft:       s.draft,
		Suggestions: append([]analysis.Suggestion(nil), s.suggestions...),
	}
	if s.result != nil {
		r := *s.result
		r.RedFlags = append([]analysis.RedFlag(nil), s.result.RedFlags...)
		snap.Result = &r
	}
	return snap
}

// publish renders an event to every sink. Must be called without s.mu held.
func (s *Session) publish(kind EventKind) {
	s.mu.Lock()
	ev := Event{Kind: kind, State: s.snapshotLocked()}
	sinks := append([]Sink(nil), s.sinks...)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Render(ev)
	}
}

func (s *Session) notify(n notice.Notice) {
	s.mu.Lock()
	sinks := append([]Sink(nil), s.sinks...)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Notify(n)
	}
}

// reject emits the notice carried by a validation error and returns it.
func (s *Session) reject(err *notice.Error) error {
	s.notify(err.Notice)
	return err
}
