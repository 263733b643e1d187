package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/notice"
)

// Ask sends one question about the current document. The question shows up
// in the transcript immediately; it joins the chat history only once the
// backend has answered. Only one question may be in flight.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", s.reject(notice.Validation(notice.TitleEmptyQuestion, "Please enter a question."))
	}

	s.mu.Lock()
	if s.doc.Empty() {
		s.mu.Unlock()
		return "", s.reject(notice.Validation(notice.TitleNoDocument, "Please upload a document before asking questions."))
	}
	if s.asking {
		s.mu.Unlock()
		return "", s.reject(notice.Validation(notice.TitleQuestionBusy, "Please wait for the current answer before asking again."))
	}
	s.asking = true
	text := s.doc.Text
	history := append([]analysis.ChatTurn(nil), s.history...)
	s.transcript = append(s.transcript, Entry{Role: RoleUser, Text: q}, Entry{Role: RolePending, Text: PendingText})
	pending := len(s.transcript) - 1
	s.mu.Unlock()

	s.publish(EventTranscriptChanged)

	var answer string
	callErr := errInterrupted
	defer func() { s.finishAsk(pending, q, answer, callErr) }()
	answer, callErr = s.analyzer.Ask(ctx, text, q, history)
	if callErr != nil {
		return "", backendFailure("Question failed", callErr)
	}
	return answer, nil
}

func (s *Session) finishAsk(pending int, question, answer string, err error) {
	s.mu.Lock()
	s.asking = false
	if err != nil {
		s.transcript[pending] = Entry{Role: RoleError, Text: FallbackText}
	} else {
		s.transcript[pending] = Entry{Role: RoleAssistant, Text: answer}
		s.history = append(s.history, analysis.ChatTurn{Question: question, Answer: answer})
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("question failed", zap.Error(err))
	}
	s.publish(EventTranscriptChanged)
}
