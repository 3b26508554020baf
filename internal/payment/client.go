package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the gateway-side transaction status. It is authoritative,
// polled on demand and never cached beyond a single check.
type Status string

const (
	StatusPending           Status = "pending"
	StatusWaitingForCapture Status = "waiting_for_capture"
	StatusSucceeded         Status = "succeeded"
	StatusCanceled          Status = "canceled"
	StatusUnknown           Status = "unknown"
)

// ParseStatus maps a raw gateway string to a known Status; anything
// unrecognized (including empty) becomes StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPending, StatusWaitingForCapture, StatusSucceeded, StatusCanceled:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// metadataUserKey is the metadata field carrying the initiating user id.
const metadataUserKey = "tg_user_id"

// Amount is a gateway money value, e.g. {"500.00", "RUB"}.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Confirmation carries the redirect target on create and the URL the
// user must open to pay on the response.
type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// Payment is the gateway's view of one transaction, read-only to us.
type Payment struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Amount       Amount            `json:"amount"`
	Confirmation Confirmation      `json:"confirmation"`
	Metadata     map[string]string `json:"metadata"`
}

// OwnerID returns the user id recorded in the payment metadata, or ""
// if the payment carries none.
func (p *Payment) OwnerID() string { return p.Metadata[metadataUserKey] }

type createRequest struct {
	Amount            Amount            `json:"amount"`
	Capture           bool              `json:"capture"`
	Description       string            `json:"description"`
	Confirmation      Confirmation      `json:"confirmation"`
	PaymentMethodData paymentMethodData `json:"payment_method_data"`
	Metadata          map[string]string `json:"metadata"`
}

type paymentMethodData struct {
	Type string `json:"type"`
}

// ClientConfig holds the fixed shop credentials and payment parameters
// shared by every call.
type ClientConfig struct {
	BaseURL     string // defaults to the production API
	ShopID      string
	Secret      string
	Mode        string // TEST selects bank_card, anything else sbp
	ReturnURL   string
	PriceRUB    int
	Currency    string
	Description string
}

// Client is a stateless wrapper around the YooKassa v3 payments API.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

const defaultBaseURL = "https://api.yookassa.ru"

// NewClient builds a gateway client with a fixed request timeout.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 20 * time.Second},
	}
}

// CreatePayment creates a transaction owned by userID. Every call sends
// a fresh Idempotence-Key, so a client-side retry of a failed create
// cannot double-charge.
func (c *Client) CreatePayment(ctx context.Context, userID int64) (*Payment, error) {
	method := "sbp"
	if strings.EqualFold(c.cfg.Mode, "TEST") {
		method = "bank_card"
	}

	payload := createRequest{
		Amount:            Amount{Value: fmt.Sprintf("%d.00", c.cfg.PriceRUB), Currency: c.cfg.Currency},
		Capture:           true,
		Description:       c.cfg.Description,
		Confirmation:      Confirmation{Type: "redirect", ReturnURL: c.cfg.ReturnURL},
		PaymentMethodData: paymentMethodData{Type: method},
		Metadata:          map[string]string{metadataUserKey: strconv.FormatInt(userID, 10)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())

	return c.do(req)
}

// GetPayment fetches the current state of a transaction by id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v3/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader())

	return c.do(req)
}

func (c *Client) authHeader() string {
	token := base64.StdEncoding.EncodeToString([]byte(c.cfg.ShopID + ":" + c.cfg.Secret))
	return "Basic " + token
}

func (c *Client) do(req *http.Request) (*Payment, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		return nil, &GatewayError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var p Payment
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return &p, nil
}
