package analysis

import (
	"errors"

	"zuschusscheck-web/internal/backend"
)

var (
	ErrUploadFailed   = errors.New("upload failed")
	ErrAnalysisFailed = errors.New("analysis failed")
)

// GenericFailureMessage is shown when the backend sent no detail.
const GenericFailureMessage = "Analyse fehlgeschlagen. Bitte versuche es erneut."

// SubmitError is returned by Submit. Kind is ErrUploadFailed or
// ErrAnalysisFailed.
type SubmitError struct {
	Kind   error
	Detail string
	cause  error
}

func (e *SubmitError) Error() string {
	if e.cause != nil {
		return e.Kind.Error() + ": " + e.cause.Error()
	}
	return e.Kind.Error()
}

func (e *SubmitError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// Message returns the text to show the visitor for a Submit error.
func Message(err error) string {
	var se *SubmitError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	if d := backend.DetailOf(err); d != "" {
		return d
	}
	return GenericFailureMessage
}

func classify(err error) *SubmitError {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		return &SubmitError{Kind: ErrAnalysisFailed, Detail: apiErr.Detail, cause: err}
	case errors.Is(err, backend.ErrInvalidResponse):
		return &SubmitError{Kind: ErrAnalysisFailed, cause: err}
	default:
		return &SubmitError{Kind: ErrUploadFailed, cause: err}
	}
}
