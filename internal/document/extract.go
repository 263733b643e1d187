package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor returns plain text uploads as-is, replacing invalid UTF-8.
type TextExtractor struct{}

func (TextExtractor) Extract(_ context.Context, f File, _ Kind) (string, error) {
	return strings.ToValidUTF8(string(f.Data), "�"), nil
}

// PDFExtractor pulls the plain text layer out of a PDF.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, f File, _ Kind) (text string, err error) {
	if len(f.Data) == 0 {
		return "", fmt.Errorf("pdf %q has no content", f.Name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// the pdf package panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return string(b), nil
}

// MultiExtractor dispatches on the classified kind.
type MultiExtractor struct {
	byKind map[Kind]Extractor
}

func NewMultiExtractor() *MultiExtractor {
	return &MultiExtractor{byKind: map[Kind]Extractor{
		KindPDF:  PDFExtractor{},
		KindText: TextExtractor{},
	}}
}

func (m *MultiExtractor) Extract(ctx context.Context, f File, kind Kind) (string, error) {
	e, ok := m.byKind[kind]
	if !ok {
		return "", fmt.Errorf("no extractor for %s", kind)
	}
	return e.Extract(ctx, f, kind)
}
