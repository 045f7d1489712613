package payment

import "encoding/json"

// LineItem is what the hosted checkout page displays and charges for.
type LineItem struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
}

// Session is the broker's view of a provider-owned checkout session.
type Session struct {
	Ref         string
	RedirectURL string
	OrderID     uint64
}

type SessionState string

const (
	SessionPending   SessionState = "PENDING"
	SessionCompleted SessionState = "COMPLETED"
	SessionFailed    SessionState = "FAILED"
)

// SessionStatus is the translated terminal/non-terminal provider state.
// AmountCents is only meaningful when State is SessionCompleted, Reason only
// when SessionFailed. Raw keeps the untouched provider payload for audit.
type SessionStatus struct {
	State       SessionState
	AmountCents int64
	Reason      string
	Raw         json.RawMessage
}

func (s *SessionStatus) Terminal() bool {
	return s.State == SessionCompleted || s.State == SessionFailed
}
