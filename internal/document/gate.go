package document

import (
	"context"
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ericksa/legalyze/internal/notice"
)

// MaxFileSize is the largest upload accepted (10 MiB).
const MaxFileSize int64 = 10_485_760

const (
	MIMEPDF  = "application/pdf"
	MIMEText = "text/plain"
)

// Kind is one of the two content kinds the gate accepts.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindText Kind = "text"
)

// File is an upload candidate. Size may be set without Data when the
// content has not been fetched yet.
type File struct {
	Name         string
	DeclaredType string
	Size         int64
	Data         []byte
}

func (f File) size() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}

// Extractor turns an accepted file into plain text.
type Extractor interface {
	Extract(ctx context.Context, f File, kind Kind) (string, error)
}

// Gate validates uploads before handing them to an Extractor.
type Gate struct {
	MaxSize   int64
	Extractor Extractor
}

func NewGate(extractor Extractor) *Gate {
	if extractor == nil {
		extractor = NewMultiExtractor()
	}
	return &Gate{MaxSize: MaxFileSize, Extractor: extractor}
}

// Classify resolves the content kind from the declared type, then the file
// extension, then by sniffing the first bytes.
func (g *Gate) Classify(f File) (Kind, error) {
	for _, candidate := range []string{f.DeclaredType, mime.TypeByExtension(filepath.Ext(f.Name))} {
		if genericType(candidate) {
			continue
		}
		if kind, ok := kindOf(candidate); ok {
			return kind, nil
		}
		if baseType(candidate) != "" {
			return "", unsupported(candidate)
		}
	}
	if len(f.Data) > 0 {
		detected := mimetype.Detect(f.Data)
		switch {
		case detected.Is(MIMEPDF):
			return KindPDF, nil
		case detected.Is(MIMEText):
			return KindText, nil
		}
		return "", unsupported(detected.String())
	}
	return "", unsupported("")
}

// Ingest runs the type check, the size check and extraction, in that order.
// Nothing is extracted for a rejected file.
func (g *Gate) Ingest(ctx context.Context, f File) (Document, error) {
	kind, err := g.Classify(f)
	if err != nil {
		return Document{}, err
	}

	maxSize := g.MaxSize
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	if f.size() > maxSize {
		return Document{}, notice.Validation(notice.TitleFileTooLarge,
			"Please upload a file smaller than "+FormatSize(maxSize)+".")
	}

	text, err := g.Extractor.Extract(ctx, f, kind)
	if err != nil {
		return Document{}, notice.Extraction(notice.TitleExtractionFailed,
			"Could not read text from "+displayName(f)+". Please try another file.", err)
	}
	if strings.TrimSpace(text) == "" {
		return Document{}, notice.Extraction(notice.TitleEmptyDocument,
			"No text could be found in "+displayName(f)+".", errors.New("extracted text is empty"))
	}

	return Document{
		Text:        text,
		OriginLabel: originLabel(f),
		SizeInfo:    FormatSize(f.size()),
	}, nil
}

func kindOf(contentType string) (Kind, bool) {
	switch baseType(contentType) {
	case MIMEPDF:
		return KindPDF, true
	case MIMEText:
		return KindText, true
	}
	return "", false
}

// genericType reports whether contentType says nothing about the content.
// Object stores label untyped uploads application/octet-stream.
func genericType(contentType string) bool {
	switch baseType(contentType) {
	case "application/octet-stream", "binary/octet-stream":
		return true
	}
	return false
}

func baseType(contentType string) string {
	t := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(t, ";"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

func unsupported(contentType string) error {
	msg := "Only PDF and plain text files are supported."
	if t := baseType(contentType); t != "" {
		msg = "Files of type " + t + " are not supported. Only PDF and plain text files are supported."
	}
	return notice.Validation(notice.TitleUnsupportedType, msg)
}

func displayName(f File) string {
	if f.Name == "" {
		return "the file"
	}
	return filepath.Base(f.Name)
}

func originLabel(f File) string {
	if f.Name == "" {
		return "Uploaded file"
	}
	return filepath.Base(f.Name)
}
