package notice

import (
	"errors"
	"fmt"
)

// Category controls how a notice is presented.
type Category string

const (
	Info    Category = "info"
	Success Category = "success"
	Warning Category = "warning"
	Failure Category = "error"
)

// Notice is a user-facing message: category + title + message.
type Notice struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// Kind classifies failures surfaced to the user.
type Kind string

const (
	KindValidation Kind = "validation"
	KindExtraction Kind = "extraction"
	KindTransport  Kind = "transport"
	KindRemote     Kind = "remote"
)

// Error carries the notice that should be shown for a failed user action.
type Error struct {
	Kind   Kind
	Notice Notice
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Notice.Title, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Notice.Title)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a warning-level error for a rejected precondition.
func Validation(title, message string) *Error {
	return &Error{
		Kind:   KindValidation,
		Notice: Notice{Category: Warning, Title: title, Message: message},
	}
}

// Extraction builds an error for a file whose text could not be used.
func Extraction(title, message string, cause error) *Error {
	return &Error{
		Kind:   KindExtraction,
		Notice: Notice{Category: Failure, Title: title, Message: message},
		Err:    cause,
	}
}

// IsKind reports whether err wraps a notice error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ne *Error
	return errors.As(err, &ne) && ne.Kind == kind
}

// Titles shared between the document gate and the session.
const (
	TitleNoDocument        = "No document"
	TitleUnsupportedType   = "Unsupported file type"
	TitleFileTooLarge      = "File too large"
	TitleEmptyDocument     = "Empty document"
	TitleExtractionFailed  = "Extraction failed"
	TitleAnalysisBusy      = "Analysis in progress"
	TitleQuestionBusy      = "Question in progress"
	TitleImproveBusy       = "Improvement in progress"
	TitleEmptyQuestion     = "Empty question"
	TitleEmptySandbox      = "Empty sandbox"
	TitleNoSuggestions     = "No suggestions"
	TitleInvalidSuggestion = "Invalid suggestion"
	TitleUseSandbox        = "Sandbox mode"
	TitleUseQA             = "Q&A mode"
)
