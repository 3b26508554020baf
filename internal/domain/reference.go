package domain

import "time"

// PaymentReference points at a user's most recent gateway transaction.
// Only the latest transaction per user is retained; a new payment
// overwrites the previous reference.
type PaymentReference struct {
	UserID    int64
	PaymentID string
	UpdatedAt time.Time // UTC
}
