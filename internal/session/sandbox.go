package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/notice"
)

// LoadSandbox seeds the draft, but only when it is empty. It reports
// whether the draft changed.
func (s *Session) LoadSandbox(text string) bool {
	s.mu.Lock()
	seeded := s.seedDraftLocked(text)
	s.mu.Unlock()

	if seeded {
		s.publish(EventSandboxChanged)
	}
	return seeded
}

func (s *Session) seedDraftLocked(text string) bool {
	if strings.TrimSpace(s.draft) != "" {
		return false
	}
	s.draft = text
	return true
}

// Edit replaces the draft. When the draft now differs from the document a
// suggestions refresh is started in the background.
func (s *Session) Edit(text string) {
	s.mu.Lock()
	s.draft = text
	differs := text != s.doc.Text
	s.mu.Unlock()

	s.publish(EventSandboxChanged)
	if differs {
		s.refreshSuggestions(text)
	}
}

// Reset restores the draft to the document text. No-op without a document.
func (s *Session) Reset() bool {
	s.mu.Lock()
	if s.doc.Empty() {
		s.mu.Unlock()
		return false
	}
	s.draft = s.doc.Text
	s.mu.Unlock()

	s.publish(EventSandboxChanged)
	s.notify(notice.Notice{Category: notice.Info, Title: "Sandbox reset", Message: "The sandbox now matches the original document."})
	return true
}

// Improve asks the backend for an improved version of the draft and
// replaces the draft with it. On failure the draft is left untouched.
func (s *Session) Improve(ctx context.Context) error {
	s.mu.Lock()
	if strings.TrimSpace(s.draft) == "" {
		s.mu.Unlock()
		return s.reject(notice.Validation(notice.TitleEmptySandbox, "Please add some contract text to the sandbox first."))
	}
	if s.improving {
		s.mu.Unlock()
		return s.reject(notice.Validation(notice.TitleImproveBusy, "Please wait for the current improvement to finish."))
	}
	s.improving = true
	draft := s.draft
	s.mu.Unlock()

	improved, err := s.improve(ctx, draft)
	if err != nil {
		failure := backendFailure("Improvement failed", err)
		s.logger.Warn("improve failed", zap.Error(err))
		s.notify(failure.Notice)
		return failure
	}

	s.mu.Lock()
	s.draft = improved
	s.mu.Unlock()

	s.publish(EventSandboxChanged)
	s.notify(notice.Notice{Category: notice.Success, Title: "Contract improved", Message: "The sandbox has been updated with the improved contract."})
	s.refreshSuggestions(improved)
	return nil
}

func (s *Session) improve(ctx context.Context, draft string) (string, error) {
	defer func() {
		s.mu.Lock()
		s.improving = false
		s.mu.Unlock()
	}()
	return s.analyzer.Improve(ctx, draft)
}

// ApplySuggestion overwrites the whole draft with the indexed suggestion's
// replacement text. Suggestions without replacement text change nothing.
func (s *Session) ApplySuggestion(index int) (bool, error) {
	s.mu.Lock()
	if !s.hasSuggest {
		s.mu.Unlock()
		return false, s.reject(notice.Validation(notice.TitleNoSuggestions, "There are no suggestions to apply yet."))
	}
	if index < 0 || index >= len(s.suggestions) {
		s.mu.Unlock()
		return false, s.reject(notice.Validation(notice.TitleInvalidSuggestion, "That suggestion does not exist."))
	}
	suggestion := s.suggestions[index]
	if !suggestion.HasReplacement() {
		s.mu.Unlock()
		s.notify(notice.Notice{Category: notice.Info, Title: suggestion.Title, Message: "This suggestion has no replacement text to apply."})
		return false, nil
	}
	s.draft = *suggestion.ReplacementText
	s.mu.Unlock()

	s.publish(EventSandboxChanged)
	s.notify(notice.Notice{Category: notice.Success, Title: "Suggestion applied", Message: suggestion.Title})
	return true, nil
}

// refreshSuggestions fetches suggestions for text without blocking the
// caller. Whichever response completes last is displayed, unless fencing
// is enabled, in which case only the newest request may win.
func (s *Session) refreshSuggestions(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	s.suggestSeq++
	seq := s.suggestSeq
	s.mu.Unlock()

	s.refreshes.Add(1)
	go func() {
		defer s.refreshes.Done()

		suggestions, err := s.analyzer.Suggestions(s.bg, text)
		if err != nil {
			s.logger.Debug("suggestions refresh failed", zap.Uint64("seq", seq), zap.Error(err))
			return
		}

		s.mu.Lock()
		if s.fence && seq != s.suggestSeq {
			s.mu.Unlock()
			s.logger.Debug("dropping superseded suggestions", zap.Uint64("seq", seq))
			return
		}
		s.suggestions = append([]analysis.Suggestion(nil), suggestions...)
		s.hasSuggest = true
		s.mu.Unlock()

		s.publish(EventSuggestionsChanged)
	}()
}
