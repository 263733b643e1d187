package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ericksa/legalyze/internal/notice"
)

// Document is the contract text currently loaded in a session.
type Document struct {
	Text        string `json:"text"`
	OriginLabel string `json:"origin_label"`
	SizeInfo    string `json:"size_info"`
}

// Empty reports whether the document has no usable text.
func (d Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

const (
	PastedLabel = "Pasted text"
	SampleLabel = "Sample contract"
)

// FromPaste builds a document from text typed or pasted by the user.
func FromPaste(text string) (Document, error) {
	if strings.TrimSpace(text) == "" {
		return Document{}, notice.Validation(notice.TitleEmptyDocument, "Please paste some contract text first.")
	}
	return Document{
		Text:        text,
		OriginLabel: PastedLabel,
		SizeInfo:    fmt.Sprintf("%d characters", utf8.RuneCountInString(text)),
	}, nil
}

// Sample returns the built-in sample rental agreement.
func Sample() Document {
	return Document{
		Text:        sampleContract,
		OriginLabel: SampleLabel,
		SizeInfo:    fmt.Sprintf("%d characters", utf8.RuneCountInString(sampleContract)),
	}
}

// FormatSize renders a byte count the way the upload panel shows it.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
