package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gambitov02/Gambittt/internal/broadcast"
	"github.com/gambitov02/Gambittt/internal/config"
	"github.com/gambitov02/Gambittt/internal/payment"
	"github.com/gambitov02/Gambittt/internal/store"
	"github.com/gambitov02/Gambittt/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	ledger  store.Ledger
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting channel-gate bot",
		zap.String("gateway_mode", a.cfg.GatewayMode),
		zap.String("http", a.cfg.HTTPAddr),
	)

	// Open Postgres and run migrations.
	ledger, err := store.OpenPostgres(ctx, a.cfg.DatabaseURL)
	if err != nil {
		a.log.Error("open postgres failed", zap.Error(err))
		return err
	}
	a.ledger = ledger
	a.log.Info("postgres ready")

	gateway := payment.NewClient(payment.ClientConfig{
		ShopID:      a.cfg.ShopID,
		Secret:      a.cfg.ShopSecret,
		Mode:        a.cfg.GatewayMode,
		ReturnURL:   a.cfg.ReturnURL,
		PriceRUB:    a.cfg.PriceRUB,
		Currency:    a.cfg.Currency,
		Description: a.cfg.Description,
	})
	transport := telegram.NewTransport(a.bot, a.cfg.ChannelID)
	tracker := payment.NewTracker(gateway, ledger, transport, a.log)
	engine := broadcast.NewEngine(ledger, transport, a.log,
		time.Duration(a.cfg.BroadcastPaceMs)*time.Millisecond)

	a.router = telegram.NewRouter(a.bot, a.log, ledger, tracker, engine,
		a.cfg.AdminID, a.cfg.PriceRUB, a.cfg.Currency, a.cfg.SupportText)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	// Long polling must not compete with a stale webhook.
	if _, err := a.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		a.log.Warn("delete webhook failed", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	// Skip channel_post updates so the private channel doesn't feed us.
	u.AllowedUpdates = []string{"message", "callback_query"}
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.ledger != nil {
				a.ledger.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
