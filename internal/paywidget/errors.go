package paywidget

import "errors"

var (
	ErrSdkLoadFailed         = errors.New("payment sdk failed to load")
	ErrPaymentCreateFailed   = errors.New("payment order could not be created")
	ErrPaymentApprovalFailed = errors.New("payment approval failed")
	ErrWidgetError           = errors.New("payment widget error")
	ErrNotMounted            = errors.New("payment widget is not mounted")
)

// GenericMessage is shown when no more specific text is available.
const GenericMessage = "Payment error occurred"

// Error is a widget failure with the text shown inline next to the button.
type Error struct {
	Kind   error
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Kind.Error() + ": " + e.Detail
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// Message returns the inline text for err.
func Message(err error) string {
	var we *Error
	if errors.As(err, &we) && we.Detail != "" {
		return we.Detail
	}
	return GenericMessage
}
