package payment

import (
	"errors"
	"fmt"
)

// ErrNoPendingPayment means the user never initiated a payment (or the
// reference was removed); the user must pay first.
var ErrNoPendingPayment = errors.New("no pending payment")

// ErrOwnershipMismatch means the stored transaction carries metadata of a
// different user. Access is denied and no state changes.
var ErrOwnershipMismatch = errors.New("payment belongs to another user")

// GatewayError is a non-success response from the payment processor,
// reported verbatim and never retried automatically.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.StatusCode, e.Body)
}

// NotConfirmedError means the transaction exists but has not succeeded
// yet; the user should check again later or start a new payment.
type NotConfirmedError struct {
	Status Status
}

func (e *NotConfirmedError) Error() string {
	return fmt.Sprintf("payment not confirmed (status: %s)", e.Status)
}

// GrantFailedError means payment is confirmed but the invite link could
// not be minted. The payment reference is kept, so a retry is cheap.
type GrantFailedError struct {
	Cause error
}

func (e *GrantFailedError) Error() string {
	return fmt.Sprintf("grant failed: %v", e.Cause)
}

func (e *GrantFailedError) Unwrap() error { return e.Cause }
