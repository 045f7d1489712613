package payment

import "errors"

var (
	// ErrProvider wraps any external payment provider failure, including
	// malformed payloads. Callers decide whether to retry.
	ErrProvider = errors.New("payment provider error")

	// ErrSessionUnknown means no order is indexed under the session ref.
	ErrSessionUnknown = errors.New("unknown checkout session")

	// ErrPollAbandoned is returned when a poll loop hits its time budget
	// before the session resolves. The order stays retryable.
	ErrPollAbandoned = errors.New("session poll abandoned before resolution")
)
