package session

import (
	"errors"
	"fmt"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/notice"
)

// backendFailure wraps an Analyzer error in the notice shown for it. Errors
// that never reached a status line (refused connection, canceled context)
// count as transport failures.
func backendFailure(title string, err error) *notice.Error {
	var (
		ne *notice.Error
		te *analysis.TransportError
		re *analysis.RemoteError
	)
	switch {
	case errors.As(err, &ne):
		return ne
	case errors.As(err, &te):
		return &notice.Error{
			Kind: notice.KindTransport,
			Notice: notice.Notice{
				Category: notice.Failure,
				Title:    title,
				Message:  fmt.Sprintf("The server responded with status %d. Please try again.", te.StatusCode),
			},
			Err: err,
		}
	case errors.As(err, &re):
		return &notice.Error{
			Kind:   notice.KindRemote,
			Notice: notice.Notice{Category: notice.Failure, Title: title, Message: re.Message},
			Err:    err,
		}
	default:
		return &notice.Error{
			Kind: notice.KindTransport,
			Notice: notice.Notice{
				Category: notice.Failure,
				Title:    title,
				Message:  "Could not reach the analysis service. Please try again.",
			},
			Err: err,
		}
	}
}
