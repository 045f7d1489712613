package payment

import "context"

// ProviderSession is the provider's answer to a session creation call.
type ProviderSession struct {
	ID          string
	RedirectURL string
}

// Gateway is the contract with the external payment provider. Only the
// request/response shape matters here; the hosted checkout page itself is
// opaque.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (*ProviderSession, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
}
