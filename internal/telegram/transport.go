package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gambitov02/Gambittt/internal/domain"
)

// Transport adapts the Bot API for the broadcast engine and the payment
// tracker: it sends messages with classified outcomes and mints
// single-use invite links into the private channel.
type Transport struct {
	bot       *tgbotapi.BotAPI
	channelID int64
}

func NewTransport(bot *tgbotapi.BotAPI, channelID int64) *Transport {
	return &Transport{bot: bot, channelID: channelID}
}

// SendText delivers plain text to one recipient.
func (t *Transport) SendText(_ context.Context, chatID int64, text string) domain.Delivery {
	_, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	return classify(err)
}

// CopyMessage delivers a copy of an existing message (no forward header).
func (t *Transport) CopyMessage(_ context.Context, chatID int64, fromChatID int64, messageID int) domain.Delivery {
	_, err := t.bot.Request(tgbotapi.NewCopyMessage(chatID, fromChatID, messageID))
	return classify(err)
}

// CreateInviteLink mints a single-use invite link into the private
// channel. Requires the bot to be a channel admin with invite rights.
func (t *Transport) CreateInviteLink(_ context.Context) (string, error) {
	resp, err := t.bot.Request(tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: t.channelID},
		MemberLimit: 1,
	})
	if err != nil {
		return "", err
	}
	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", err
	}
	return link.InviteLink, nil
}

// classify maps a Bot API error into the delivery taxonomy:
// 403 (and "chat not found") -> the recipient is gone for good;
// 429 -> back off for retry_after seconds; anything else is transient.
func classify(err error) domain.Delivery {
	if err == nil {
		return domain.Delivery{Kind: domain.Delivered}
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 403:
			return domain.Delivery{Kind: domain.PermanentlyBlocked, Err: err}
		case apiErr.Code == 429:
			return domain.Delivery{
				Kind:       domain.RateLimited,
				RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
				Err:        err,
			}
		case apiErr.Code == 400 && strings.Contains(apiErr.Message, "chat not found"):
			return domain.Delivery{Kind: domain.PermanentlyBlocked, Err: err}
		}
	}
	return domain.Delivery{Kind: domain.TransientError, Err: err}
}
