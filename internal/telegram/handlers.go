package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gambitov02/Gambittt/internal/broadcast"
	"github.com/gambitov02/Gambittt/internal/payment"
)

// --- Commands ---

func (r *Router) handleStart(ctx context.Context, userID int64) {
	r.ensureUser(ctx, userID)
	r.sendMenu(ctx, userID, fmt.Sprintf(startFmt, r.priceRUB, r.currency))
}

func (r *Router) handleMenu(ctx context.Context, userID int64) {
	r.ensureUser(ctx, userID)
	r.sendMenu(ctx, userID, menuText)
}

func (r *Router) handleWhoami(userID int64) {
	r.sendText(userID, fmt.Sprintf(whoamiFmt, userID))
}

func (r *Router) handleStats(ctx context.Context, userID int64) {
	if !r.isAdmin(userID) {
		return
	}
	total, subscribed, err := r.ledger.CountUsers(ctx)
	if err != nil {
		r.log.Error("CountUsers failed", zap.Error(err))
		r.sendText(userID, "Error reading stats.")
		return
	}
	r.sendText(userID, fmt.Sprintf(statsFmt, total, subscribed))
}

// --- Payment callbacks ---

func (r *Router) handlePay(ctx context.Context, userID int64, cbID string) {
	r.ensureUser(ctx, userID)
	r.answerCallback(cbID)

	p, err := r.tracker.Initiate(ctx, userID)
	if err != nil {
		r.log.Error("initiate payment failed", zap.Int64("user", userID), zap.Error(err))
		r.sendText(userID, fmt.Sprintf(payFailedFmt, err))
		return
	}
	r.sendMenu(ctx, userID, fmt.Sprintf(payCreatedFmt, p.Confirmation.ConfirmationURL, p.ID))
}

func (r *Router) handleCheck(ctx context.Context, userID int64, cbID string) {
	r.ensureUser(ctx, userID)
	r.answerCallback(cbID)

	outcome, err := r.tracker.Check(ctx, userID)
	switch {
	case errors.Is(err, payment.ErrNoPendingPayment):
		r.sendText(userID, checkFirstPay)
		return
	case err != nil:
		r.log.Error("check payment failed", zap.Int64("user", userID), zap.Error(err))
		r.sendText(userID, fmt.Sprintf(checkFailedFmt, err))
		return
	}

	switch outcome.State {
	case payment.CheckConfirmed:
		r.sendMenu(ctx, userID, checkConfirmed)
	case payment.CheckInProgress:
		r.sendMenu(ctx, userID, checkInProgress)
	default:
		r.sendMenu(ctx, userID, fmt.Sprintf(checkOtherFmt, outcome.Status))
	}
}

func (r *Router) handleAccess(ctx context.Context, userID int64, cbID string) {
	r.ensureUser(ctx, userID)
	r.answerCallback(cbID)

	link, err := r.tracker.Grant(ctx, userID)
	if err != nil {
		var notConfirmed *payment.NotConfirmedError
		var grantFailed *payment.GrantFailedError
		switch {
		case errors.Is(err, payment.ErrNoPendingPayment):
			r.sendText(userID, checkFirstPay)
		case errors.Is(err, payment.ErrOwnershipMismatch):
			r.sendText(userID, accessNotYours)
		case errors.As(err, &notConfirmed):
			r.sendMenu(ctx, userID, fmt.Sprintf(accessNotPaidFmt, notConfirmed.Status))
		case errors.As(err, &grantFailed):
			r.log.Error("invite link failed", zap.Int64("user", userID), zap.Error(err))
			r.sendText(userID, fmt.Sprintf(accessGrantErr, grantFailed.Cause))
		default:
			r.log.Error("grant failed", zap.Int64("user", userID), zap.Error(err))
			r.sendText(userID, fmt.Sprintf(checkFailedFmt, err))
		}
		return
	}
	r.sendMenu(ctx, userID, fmt.Sprintf(accessGrantedFmt, link))
}

// --- Subscription / support callbacks ---

func (r *Router) handleToggleSub(ctx context.Context, userID int64, cbID string) {
	r.ensureUser(ctx, userID)
	r.answerCallback(cbID)

	current, err := r.ledger.IsSubscribed(ctx, userID)
	if err != nil {
		r.log.Error("IsSubscribed failed", zap.Int64("user", userID), zap.Error(err))
		r.sendText(userID, "Error toggling the newsletter. Try again later.")
		return
	}
	if err := r.ledger.SetSubscribed(ctx, userID, !current); err != nil {
		r.log.Error("SetSubscribed failed", zap.Int64("user", userID), zap.Error(err))
		r.sendText(userID, "Error toggling the newsletter. Try again later.")
		return
	}

	text := subOnText
	if current {
		text = subOffText
	}
	r.sendMenu(ctx, userID, text)
}

func (r *Router) handleSupport(userID int64, cbID string) {
	r.answerCallback(cbID)
	r.sendText(userID, r.support)
}

// --- Broadcasts (admin only) ---

func (r *Router) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !r.isAdmin(userID) {
		r.sendText(userID, noAccess)
		return
	}

	parts := strings.SplitN(msg.Text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		r.sendText(userID, broadcastUsage)
		return
	}

	job := broadcast.Job{Text: strings.TrimSpace(parts[1])}
	r.startBroadcast(ctx, userID, job, broadcastStartFmt)
}

func (r *Router) handleBroadcastHere(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !r.isAdmin(userID) {
		r.sendText(userID, noAccess)
		return
	}
	if msg.ReplyToMessage == nil {
		r.sendText(userID, broadcastHereUsage)
		return
	}

	src := msg.ReplyToMessage
	job := broadcast.Job{Copy: &broadcast.MessageRef{
		ChatID:    src.Chat.ID,
		MessageID: src.MessageID,
	}}
	r.startBroadcast(ctx, userID, job, broadcastCopyFmt)
}

// startBroadcast announces the run and executes it in its own goroutine
// so the update loop stays responsive. The job is not cancellable; it
// runs to completion or process termination.
func (r *Router) startBroadcast(ctx context.Context, adminID int64, job broadcast.Job, announceFmt string) {
	_, subscribed, err := r.ledger.CountUsers(ctx)
	if err != nil {
		r.log.Error("CountUsers failed", zap.Error(err))
		r.sendText(adminID, broadcastFailed)
		return
	}
	if subscribed == 0 {
		r.sendText(adminID, broadcastEmpty)
		return
	}
	r.sendText(adminID, fmt.Sprintf(announceFmt, subscribed))

	go func() {
		rep, err := r.engine.Run(ctx, job)
		if err != nil {
			r.log.Error("broadcast run failed", zap.Error(err))
			r.sendText(adminID, broadcastFailed)
			return
		}
		r.sendText(adminID, fmt.Sprintf(broadcastDoneFmt, rep.Delivered, rep.Blocked, rep.Failed))
	}()
}
