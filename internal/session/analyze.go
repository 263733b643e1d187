package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/notice"
)

// SwitchMode changes the active tab. Switching to an analysis tab drops the
// previous result so the user always re-runs analysis. No network calls.
func (s *Session) SwitchMode(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}

	s.mu.Lock()
	s.mode = mode
	if mode == ModeSimplified || mode == ModeRedFlags {
		s.result = nil
	}
	s.mu.Unlock()

	s.publish(EventModeChanged)
	return nil
}

// RequestAnalysis runs the simplify or red-flag analysis on the current
// document. Sandbox and Q&A are interaction-only and are rejected with an
// instruction notice.
func (s *Session) RequestAnalysis(ctx context.Context, mode Mode) error {
	switch mode {
	case ModeSimplified, ModeRedFlags:
	case ModeSandbox:
		return s.reject(instruction(notice.TitleUseSandbox,
			"Edit the contract in the sandbox and use Improve or the suggestions instead."))
	case ModeQA:
		return s.reject(instruction(notice.TitleUseQA,
			"Type a question about your document in the Q&A panel."))
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	s.mu.Lock()
	if s.doc.Empty() {
		s.mu.Unlock()
		return s.reject(notice.Validation(notice.TitleNoDocument, "Please upload a document or paste text first."))
	}
	if s.analyzing {
		s.mu.Unlock()
		return s.reject(notice.Validation(notice.TitleAnalysisBusy, "Please wait for the current analysis to finish."))
	}
	s.analyzing = true
	text := s.doc.Text
	s.mu.Unlock()

	s.publish(EventAnalysisStarted)

	var result *Result
	callErr := errInterrupted
	defer func() { s.finishAnalysis(mode, result, callErr) }()
	result, callErr = s.analyze(ctx, mode, text)
	if callErr != nil {
		return backendFailure(analysisTitle(mode), callErr)
	}
	return nil
}

func (s *Session) analyze(ctx context.Context, mode Mode, text string) (*Result, error) {
	if mode == ModeRedFlags {
		flags, err := s.analyzer.RedFlags(ctx, text)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: ModeRedFlags, RedFlags: flags}, nil
	}
	simplified, err := s.analyzer.Simplify(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Result{Mode: ModeSimplified, Simplified: simplified}, nil
}

// finishAnalysis always releases the analyzing flag; state only changes on
// success.
func (s *Session) finishAnalysis(mode Mode, result *Result, err error) {
	s.mu.Lock()
	s.analyzing = false
	if err == nil {
		s.result = result
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("analysis failed", zap.String("mode", string(mode)), zap.Error(err))
		s.notify(backendFailure(analysisTitle(mode), err).Notice)
		s.publish(EventAnalysisFailed)
		return
	}
	s.publish(EventAnalysisReady)
	s.notify(notice.Notice{Category: notice.Success, Title: "Analysis complete", Message: analysisDone(mode)})
}

func analysisTitle(mode Mode) string {
	if mode == ModeRedFlags {
		return "Red flag analysis failed"
	}
	return "Simplification failed"
}

func analysisDone(mode Mode) string {
	if mode == ModeRedFlags {
		return "Risky clauses have been highlighted."
	}
	return "Your document has been simplified."
}

func instruction(title, message string) *notice.Error {
	err := notice.Validation(title, message)
	err.Notice.Category = notice.Info
	return err
}
