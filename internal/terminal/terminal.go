// Package terminal renders session state and notices to a text terminal.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/notice"
	"github.com/ericksa/legalyze/internal/session"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	headerColor  = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
)

// Sink writes notices and session events to out. It is safe for use from
// the goroutines that refresh suggestions.
type Sink struct {
	mu       sync.Mutex
	out      io.Writer
	markdown bool
	width    int
	md       *glamour.TermRenderer
}

type Option func(*Sink)

// WithPlainText disables markdown rendering.
func WithPlainText() Option {
	return func(s *Sink) { s.markdown = false }
}

// WithWordWrap sets the markdown wrap width.
func WithWordWrap(width int) Option {
	return func(s *Sink) { s.width = width }
}

func New(out io.Writer, opts ...Option) *Sink {
	s := &Sink{out: out, markdown: true, width: 80}
	for _, opt := range opts {
		opt(s)
	}
	if s.markdown {
		s.md = newRenderer(s.width)
	}
	return s
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err == nil {
		return r
	}
	r, err = glamour.NewTermRenderer(glamour.WithStylePath("light"), glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	return r
}

func categoryColor(c notice.Category) *color.Color {
	switch c {
	case notice.Success:
		return successColor
	case notice.Warning:
		return warningColor
	case notice.Failure:
		return errorColor
	default:
		return infoColor
	}
}

func (s *Sink) Notify(n notice.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := categoryColor(n.Category)
	c.Fprintf(s.out, "[%s] %s", n.Category, n.Title)
	if n.Message != "" {
		fmt.Fprintf(s.out, ": %s", n.Message)
	}
	fmt.Fprintln(s.out)
}

func (s *Sink) Render(ev session.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := ev.State
	switch ev.Kind {
	case session.EventDocumentLoaded:
		infoColor.Fprintf(s.out, "Loaded %s", st.Document.OriginLabel)
		dimColor.Fprintf(s.out, " (%s)\n", st.Document.SizeInfo)
	case session.EventModeChanged:
		fmt.Fprintf(s.out, "Mode: %s\n", st.Mode)
	case session.EventAnalysisStarted:
		dimColor.Fprintf(s.out, "Analyzing %s...\n", st.Mode)
	case session.EventAnalysisReady:
		s.writeResult(st.Result)
	case session.EventTranscriptChanged:
		n := len(st.Transcript)
		if n == 0 {
			break
		}
		// a new question arrives together with its pending entry
		if st.Transcript[n-1].Role == session.RolePending && n >= 2 {
			s.writeEntry(st.Transcript[n-2])
		}
		s.writeEntry(st.Transcript[n-1])
	case session.EventSuggestionsChanged:
		s.writeSuggestions(st.Suggestions)
	case session.EventSandboxChanged:
		dimColor.Fprintf(s.out, "Draft updated (%d characters)\n", len([]rune(st.Draft)))
	}
}

func (s *Sink) writeResult(r *session.Result) {
	if r == nil {
		return
	}
	switch r.Mode {
	case session.ModeSimplified:
		headerColor.Fprintln(s.out, "Simplified Document")
		s.writeMarkdown(r.Simplified)
	case session.ModeRedFlags:
		headerColor.Fprintf(s.out, "Red Flags (%d)\n", len(r.RedFlags))
		for i, f := range r.RedFlags {
			WriteRedFlag(s.out, i+1, f)
		}
	}
}

func (s *Sink) writeEntry(e session.Entry) {
	switch e.Role {
	case session.RoleUser:
		infoColor.Fprint(s.out, "You: ")
		fmt.Fprintln(s.out, e.Text)
	case session.RolePending:
		dimColor.Fprintln(s.out, e.Text)
	case session.RoleError:
		errorColor.Fprintln(s.out, e.Text)
	default:
		successColor.Fprintln(s.out, "Assistant:")
		s.writeMarkdown(e.Text)
	}
}

func (s *Sink) writeSuggestions(list []analysis.Suggestion) {
	if len(list) == 0 {
		return
	}
	headerColor.Fprintln(s.out, "Suggestions")
	for i, sg := range list {
		marker := " "
		if sg.HasReplacement() {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %d. %s\n", marker, i+1, sg.Title)
		if sg.Description != "" {
			dimColor.Fprintf(s.out, "     %s\n", sg.Description)
		}
	}
	dimColor.Fprintln(s.out, "  (* can be applied to the draft)")
}

func (s *Sink) writeMarkdown(text string) {
	if s.md != nil {
		if out, err := s.md.Render(text); err == nil {
			fmt.Fprint(s.out, out)
			return
		}
	}
	fmt.Fprintln(s.out, strings.TrimRight(text, "\n"))
}

func riskColor(r analysis.RiskLevel) *color.Color {
	switch r {
	case analysis.RiskSafe:
		return successColor
	case analysis.RiskDangerous:
		return errorColor
	default:
		return warningColor
	}
}

// WriteRedFlag prints one numbered red flag with its risk badge.
func WriteRedFlag(w io.Writer, n int, f analysis.RedFlag) {
	fmt.Fprintf(w, "%d. ", n)
	riskColor(f.Risk).Fprintf(w, "[%s]", strings.ToUpper(string(f.Risk)))
	fmt.Fprintf(w, " %s\n", f.Clause)
	if f.Explanation != "" {
		fmt.Fprintf(w, "   %s\n", f.Explanation)
	}
}

// WriteDiff prints a line diff in unified style.
func WriteDiff(w io.Writer, lines []session.DiffLine) {
	if !session.Changed(lines) {
		dimColor.Fprintln(w, "Draft matches the original document.")
		return
	}
	for _, l := range lines {
		switch l.Op {
		case session.DiffAdded:
			successColor.Fprintf(w, "+ %s\n", l.Text)
		case session.DiffRemoved:
			errorColor.Fprintf(w, "- %s\n", l.Text)
		default:
			fmt.Fprintf(w, "  %s\n", l.Text)
		}
	}
}

// WriteStatus prints a one-screen summary of the session.
func WriteStatus(w io.Writer, st session.Snapshot) {
	headerColor.Fprintln(w, "Session")
	if st.Document.Empty() {
		fmt.Fprintln(w, "  document:    none")
	} else {
		fmt.Fprintf(w, "  document:    %s (%s)\n", st.Document.OriginLabel, st.Document.SizeInfo)
	}
	fmt.Fprintf(w, "  mode:        %s\n", st.Mode)
	result := "none"
	if st.Result != nil {
		result = string(st.Result.Mode)
	}
	fmt.Fprintf(w, "  result:      %s\n", result)
	fmt.Fprintf(w, "  questions:   %d answered\n", len(st.History))
	fmt.Fprintf(w, "  draft:       %d characters\n", len([]rune(st.Draft)))
	fmt.Fprintf(w, "  suggestions: %d\n", len(st.Suggestions))

	var busy []string
	if st.Analyzing {
		busy = append(busy, "analyzing")
	}
	if st.Asking {
		busy = append(busy, "asking")
	}
	if st.Improving {
		busy = append(busy, "improving")
	}
	if len(busy) > 0 {
		warningColor.Fprintf(w, "  busy:        %s\n", strings.Join(busy, ", "))
	}
}
