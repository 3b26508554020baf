package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/gambitov02/Gambittt/internal/store"
)

// Gateway is the subset of the payment processor the tracker needs.
type Gateway interface {
	CreatePayment(ctx context.Context, userID int64) (*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// AccessGranter mints a single-use invite artifact for a verified payer.
// telegram.Transport implements this over createChatInviteLink.
type AccessGranter interface {
	CreateInviteLink(ctx context.Context) (string, error)
}

// CheckState is the user-facing view of a transaction's progress.
type CheckState int

const (
	// CheckInProgress: pending or waiting_for_capture; worth re-checking.
	CheckInProgress CheckState = iota
	// CheckConfirmed: succeeded; grant will hand out the invite.
	CheckConfirmed
	// CheckFailed: any terminal non-succeeded status.
	CheckFailed
)

// CheckOutcome pairs the mapped state with the raw gateway status that
// produced it, so the caller can show the status on failure.
type CheckOutcome struct {
	State  CheckState
	Status Status
}

// Tracker drives the request -> verify -> grant sequence, using the
// gateway as the source of truth for transaction state.
type Tracker struct {
	gateway Gateway
	ledger  store.Ledger
	granter AccessGranter
	log     *zap.Logger
}

func NewTracker(gateway Gateway, ledger store.Ledger, granter AccessGranter, log *zap.Logger) *Tracker {
	return &Tracker{gateway: gateway, ledger: ledger, granter: granter, log: log}
}

// Initiate creates a fresh transaction for the user and records it as
// the user's active payment reference, overwriting any prior one. On
// gateway failure nothing is persisted and the error is returned as-is.
func (t *Tracker) Initiate(ctx context.Context, userID int64) (*Payment, error) {
	p, err := t.gateway.CreatePayment(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := t.ledger.SaveLastPayment(ctx, userID, p.ID); err != nil {
		return nil, fmt.Errorf("save payment reference: %w", err)
	}
	t.log.Info("payment created",
		zap.Int64("user", userID),
		zap.String("payment", p.ID),
	)
	return p, nil
}

// Check reports the current state of the user's active transaction.
// It is a pure read: safe to call repeatedly, mutates nothing.
func (t *Tracker) Check(ctx context.Context, userID int64) (CheckOutcome, error) {
	ref, err := t.ledger.LastPayment(ctx, userID)
	if errors.Is(err, store.ErrNoPayment) {
		return CheckOutcome{}, ErrNoPendingPayment
	}
	if err != nil {
		return CheckOutcome{}, fmt.Errorf("load payment reference: %w", err)
	}

	p, err := t.gateway.GetPayment(ctx, ref.PaymentID)
	if err != nil {
		return CheckOutcome{}, err
	}

	status := ParseStatus(p.Status)
	switch status {
	case StatusSucceeded:
		return CheckOutcome{State: CheckConfirmed, Status: status}, nil
	case StatusPending, StatusWaitingForCapture:
		return CheckOutcome{State: CheckInProgress, Status: status}, nil
	default:
		return CheckOutcome{State: CheckFailed, Status: status}, nil
	}
}

// Grant verifies the user's transaction succeeded and belongs to them,
// then mints a single-use invite link. Granting does not consume the
// reference: a confirmed payment can be granted again.
func (t *Tracker) Grant(ctx context.Context, userID int64) (string, error) {
	ref, err := t.ledger.LastPayment(ctx, userID)
	if errors.Is(err, store.ErrNoPayment) {
		return "", ErrNoPendingPayment
	}
	if err != nil {
		return "", fmt.Errorf("load payment reference: %w", err)
	}

	p, err := t.gateway.GetPayment(ctx, ref.PaymentID)
	if err != nil {
		return "", err
	}

	// Empty metadata is treated as unowned and accepted: payments created
	// before owner metadata existed must stay redeemable.
	if owner := p.OwnerID(); owner != "" && owner != strconv.FormatInt(userID, 10) {
		t.log.Warn("payment owner mismatch",
			zap.Int64("user", userID),
			zap.String("payment", p.ID),
			zap.String("owner", owner),
		)
		return "", ErrOwnershipMismatch
	}

	if status := ParseStatus(p.Status); status != StatusSucceeded {
		return "", &NotConfirmedError{Status: status}
	}

	link, err := t.granter.CreateInviteLink(ctx)
	if err != nil {
		return "", &GrantFailedError{Cause: err}
	}
	t.log.Info("access granted",
		zap.Int64("user", userID),
		zap.String("payment", p.ID),
	)
	return link, nil
}
