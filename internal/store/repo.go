package store

import (
	"context"
	"errors"

	"github.com/gambitov02/Gambittt/internal/domain"
)

// ErrNoPayment is returned by LastPayment when the user has no stored
// payment reference.
var ErrNoPayment = errors.New("no payment reference")

// Ledger defines storage operations for users and payment references.
type Ledger interface {
	// UpsertUser creates the user row on first contact or bumps
	// updated_at on subsequent ones. Never touches the subscribed flag.
	UpsertUser(ctx context.Context, userID int64) error
	SetSubscribed(ctx context.Context, userID int64, subscribed bool) error
	IsSubscribed(ctx context.Context, userID int64) (bool, error)
	// DeleteUser removes the user and its payment reference in one
	// transaction: both rows or neither.
	DeleteUser(ctx context.Context, userID int64) error
	// SubscriberIDs lists ids of users opted into announcements.
	SubscriberIDs(ctx context.Context) ([]int64, error)
	CountUsers(ctx context.Context) (total, subscribed int64, err error)
	// SaveLastPayment overwrites the user's payment reference.
	SaveLastPayment(ctx context.Context, userID int64, paymentID string) error
	// LastPayment returns the stored payment reference or ErrNoPayment.
	LastPayment(ctx context.Context, userID int64) (*domain.PaymentReference, error)
	Close()
}
