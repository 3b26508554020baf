package telegram

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gambitov02/Gambittt/internal/domain"
)

func TestClassifyDeliveryOutcomes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.DeliveryKind
	}{
		{"no error", nil, domain.Delivered},
		{
			"bot blocked",
			&tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"},
			domain.PermanentlyBlocked,
		},
		{
			"user deactivated",
			&tgbotapi.Error{Code: 403, Message: "Forbidden: user is deactivated"},
			domain.PermanentlyBlocked,
		},
		{
			"chat not found",
			&tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"},
			domain.PermanentlyBlocked,
		},
		{
			"rate limited",
			&tgbotapi.Error{Code: 429, Message: "Too Many Requests: retry after 7"},
			domain.RateLimited,
		},
		{
			"other bad request",
			&tgbotapi.Error{Code: 400, Message: "Bad Request: message text is empty"},
			domain.TransientError,
		},
		{
			"server error",
			&tgbotapi.Error{Code: 500, Message: "Internal Server Error"},
			domain.TransientError,
		},
		{"plain network error", errors.New("dial tcp: i/o timeout"), domain.TransientError},
		{
			"wrapped api error",
			fmt.Errorf("send: %w", &tgbotapi.Error{Code: 403, Message: "Forbidden"}),
			domain.PermanentlyBlocked,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			if got.Kind != tc.want {
				t.Fatalf("classify(%v): want kind %v, got %v", tc.err, tc.want, got.Kind)
			}
			if tc.err != nil && got.Err == nil {
				t.Fatal("underlying error must be preserved")
			}
		})
	}
}

func TestClassifyRetryAfterSeconds(t *testing.T) {
	err := &tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7},
	}
	got := classify(err)
	if got.Kind != domain.RateLimited {
		t.Fatalf("want RateLimited, got %v", got.Kind)
	}
	if got.RetryAfter != 7*time.Second {
		t.Fatalf("want retry after 7s, got %s", got.RetryAfter)
	}
}
