package paywidget

import (
	"context"
	"net/url"
	"strings"
)

const sdkBaseURL = "https://www.paypal.com/sdk/js"

// SDK identifies a loaded payment script.
type SDK struct {
	ScriptURL string
}

// Loader makes the payment SDK available.
type Loader interface {
	Load(ctx context.Context) (SDK, error)
}

// ScriptLoader resolves the PayPal JS SDK URL for a client id.
type ScriptLoader struct {
	ClientID string
	Currency string
	Locale   string
}

func (l ScriptLoader) Load(ctx context.Context) (SDK, error) {
	if err := ctx.Err(); err != nil {
		return SDK{}, &Error{Kind: ErrSdkLoadFailed, cause: err}
	}
	clientID := strings.TrimSpace(l.ClientID)
	if clientID == "" {
		return SDK{}, &Error{Kind: ErrSdkLoadFailed, Detail: "PayPal ist derzeit nicht verfügbar"}
	}
	currency := strings.TrimSpace(l.Currency)
	if currency == "" {
		currency = "EUR"
	}
	locale := strings.TrimSpace(l.Locale)
	if locale == "" {
		locale = "de_DE"
	}

	q := url.Values{}
	q.Set("client-id", clientID)
	q.Set("currency", currency)
	q.Set("intent", "capture")
	q.Set("locale", locale)
	return SDK{ScriptURL: sdkBaseURL + "?" + q.Encode()}, nil
}
