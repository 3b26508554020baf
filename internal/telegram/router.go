package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gambitov02/Gambittt/internal/broadcast"
	"github.com/gambitov02/Gambittt/internal/payment"
	"github.com/gambitov02/Gambittt/internal/store"
)

// Router wires Telegram updates to handlers. All failures are converted
// to user-facing messages here; nothing propagates past this layer.
type Router struct {
	bot     *tgbotapi.BotAPI
	log     *zap.Logger
	ledger  store.Ledger
	tracker *payment.Tracker
	engine  *broadcast.Engine

	adminID  int64
	priceRUB int
	currency string
	support  string
}

// NewRouter creates a new Telegram router.
func NewRouter(
	bot *tgbotapi.BotAPI,
	log *zap.Logger,
	ledger store.Ledger,
	tracker *payment.Tracker,
	engine *broadcast.Engine,
	adminID int64,
	priceRUB int,
	currency string,
	support string,
) *Router {
	return &Router{
		bot:      bot,
		log:      log,
		ledger:   ledger,
		tracker:  tracker,
		engine:   engine,
		adminID:  adminID,
		priceRUB: priceRUB,
		currency: currency,
		support:  support,
	}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// Text messages / commands
	if upd.Message != nil && upd.Message.From != nil {
		msg := upd.Message
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, msg.From.ID)
		case strings.HasPrefix(text, "/menu"):
			r.handleMenu(ctx, msg.From.ID)
		case strings.HasPrefix(text, "/whoami"):
			r.handleWhoami(msg.From.ID)
		case strings.HasPrefix(text, "/stats"):
			r.handleStats(ctx, msg.From.ID)
		case strings.HasPrefix(text, "/broadcast_here"):
			r.handleBroadcastHere(ctx, msg)
		case strings.HasPrefix(text, "/broadcast"):
			r.handleBroadcast(ctx, msg)
		default:
			// Not a conversation bot: anything else gets the menu.
			r.handleMenu(ctx, msg.From.ID)
		}
		return
	}

	// Callback queries (inline buttons)
	if upd.CallbackQuery != nil && upd.CallbackQuery.From != nil {
		cb := upd.CallbackQuery
		userID := cb.From.ID

		switch cb.Data {
		case "pay":
			r.handlePay(ctx, userID, cb.ID)
		case "check":
			r.handleCheck(ctx, userID, cb.ID)
		case "access":
			r.handleAccess(ctx, userID, cb.ID)
		case "toggle_sub":
			r.handleToggleSub(ctx, userID, cb.ID)
		case "support":
			r.handleSupport(userID, cb.ID)
		default:
			// Unknown callback — ignore silently
		}
		return
	}
}

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (r *Router) sendMenu(ctx context.Context, chatID int64, text string) {
	subscribed, err := r.ledger.IsSubscribed(ctx, chatID)
	if err != nil {
		r.log.Error("IsSubscribed failed", zap.Int64("user", chatID), zap.Error(err))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = menuKeyboard(subscribed)
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (r *Router) answerCallback(id string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		r.log.Warn("answer callback failed", zap.Error(err))
	}
}

func (r *Router) isAdmin(userID int64) bool { return userID == r.adminID }

// ensureUser makes sure a user row exists before any action.
func (r *Router) ensureUser(ctx context.Context, userID int64) {
	if err := r.ledger.UpsertUser(ctx, userID); err != nil {
		r.log.Error("UpsertUser failed", zap.Int64("user", userID), zap.Error(err))
	}
}
