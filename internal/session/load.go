package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/document"
	"github.com/ericksa/legalyze/internal/notice"
)

// Upload runs the file through the ingest gate. On any rejection or
// extraction failure the session is left exactly as it was.
func (s *Session) Upload(ctx context.Context, f document.File) error {
	doc, err := s.ingester.Ingest(ctx, f)
	if err != nil {
		failure := ingestFailure(err)
		s.logger.Info("upload rejected", zap.String("file", f.Name), zap.String("reason", failure.Notice.Title))
		s.notify(failure.Notice)
		return failure
	}
	s.setDocument(doc)
	return nil
}

// Paste loads text entered directly by the user.
func (s *Session) Paste(text string) error {
	doc, err := document.FromPaste(text)
	if err != nil {
		failure := ingestFailure(err)
		s.notify(failure.Notice)
		return failure
	}
	s.setDocument(doc)
	return nil
}

// LoadSample loads the built-in sample contract.
func (s *Session) LoadSample() {
	s.setDocument(document.Sample())
}

// setDocument replaces the live document (last write wins) and seeds the
// sandbox only when no draft is in progress.
func (s *Session) setDocument(doc document.Document) {
	s.mu.Lock()
	s.doc = doc
	s.result = nil
	seeded := s.seedDraftLocked(doc.Text)
	s.mu.Unlock()

	s.logger.Info("document loaded", zap.String("origin", doc.OriginLabel), zap.String("size", doc.SizeInfo))
	s.publish(EventDocumentLoaded)
	if seeded {
		s.publish(EventSandboxChanged)
	}
	s.notify(notice.Notice{
		Category: notice.Success,
		Title:    "Document loaded",
		Message:  doc.OriginLabel + " (" + doc.SizeInfo + ")",
	})
}

func ingestFailure(err error) *notice.Error {
	if ne, ok := err.(*notice.Error); ok {
		return ne
	}
	return notice.Extraction(notice.TitleExtractionFailed, "The file could not be processed. Please try again.", err)
}
