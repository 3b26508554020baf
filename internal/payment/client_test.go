package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(baseURL, mode string) *Client {
	return NewClient(ClientConfig{
		BaseURL:     baseURL,
		ShopID:      "shop-1",
		Secret:      "s3cret",
		Mode:        mode,
		ReturnURL:   "https://t.me/gate_bot",
		PriceRUB:    500,
		Currency:    "RUB",
		Description: "Private channel access",
	})
}

func TestClientCreatePayment(t *testing.T) {
	type captured struct {
		method string
		path   string
		auth   string
		idem   string
		body   map[string]any
	}
	var reqs []captured

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		reqs = append(reqs, captured{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			idem:   r.Header.Get("Idempotence-Key"),
			body:   body,
		})
		_, _ = w.Write([]byte(`{
			"id": "tx-1",
			"status": "pending",
			"amount": {"value": "500.00", "currency": "RUB"},
			"confirmation": {"type": "redirect", "confirmation_url": "https://pay.example/tx-1"},
			"metadata": {"tg_user_id": "42"}
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "TEST")
	p, err := c.CreatePayment(context.Background(), 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != "tx-1" || p.Status != "pending" {
		t.Fatalf("unexpected payment: %+v", p)
	}
	if p.Confirmation.ConfirmationURL != "https://pay.example/tx-1" {
		t.Fatalf("unexpected confirmation URL: %s", p.Confirmation.ConfirmationURL)
	}

	req := reqs[0]
	if req.method != http.MethodPost || req.path != "/v3/payments" {
		t.Fatalf("want POST /v3/payments, got %s %s", req.method, req.path)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("shop-1:s3cret"))
	if req.auth != wantAuth {
		t.Fatalf("auth header: want %q, got %q", wantAuth, req.auth)
	}
	if req.idem == "" {
		t.Fatal("Idempotence-Key must be set")
	}

	amount := req.body["amount"].(map[string]any)
	if amount["value"] != "500.00" || amount["currency"] != "RUB" {
		t.Fatalf("unexpected amount: %v", amount)
	}
	if req.body["capture"] != true {
		t.Fatal("capture must be true")
	}
	pmd := req.body["payment_method_data"].(map[string]any)
	if pmd["type"] != "bank_card" {
		t.Fatalf("TEST mode must use bank_card, got %v", pmd["type"])
	}
	meta := req.body["metadata"].(map[string]any)
	if meta["tg_user_id"] != "42" {
		t.Fatalf("owner metadata: want 42, got %v", meta["tg_user_id"])
	}
	conf := req.body["confirmation"].(map[string]any)
	if conf["type"] != "redirect" || conf["return_url"] != "https://t.me/gate_bot" {
		t.Fatalf("unexpected confirmation: %v", conf)
	}

	// Every create carries a fresh idempotency key.
	if _, err := c.CreatePayment(context.Background(), 42); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if reqs[1].idem == "" || reqs[1].idem == reqs[0].idem {
		t.Fatalf("idempotency key must be fresh per call: %q vs %q", reqs[0].idem, reqs[1].idem)
	}
}

func TestClientCreatePaymentLiveMode(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PaymentMethodData struct {
				Type string `json:"type"`
			} `json:"payment_method_data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		method = body.PaymentMethodData.Type
		_, _ = w.Write([]byte(`{"id": "tx-1", "status": "pending"}`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL, "LIVE").CreatePayment(context.Background(), 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	if method != "sbp" {
		t.Fatalf("live mode must use sbp, got %q", method)
	}
}

func TestClientGatewayErrorSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type": "error", "description": "Invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, "TEST").CreatePayment(context.Background(), 1)
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("want GatewayError, got %v", err)
	}
	if gwErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want status 401, got %d", gwErr.StatusCode)
	}
	if gwErr.Body != `{"type": "error", "description": "Invalid credentials"}` {
		t.Fatalf("body must be reported verbatim, got %q", gwErr.Body)
	}
}

func TestClientGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v3/payments/tx-7" {
			t.Errorf("want GET /v3/payments/tx-7, got %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("missing auth header")
		}
		_, _ = w.Write([]byte(`{
			"id": "tx-7",
			"status": "succeeded",
			"metadata": {"tg_user_id": "42"}
		}`))
	}))
	defer srv.Close()

	p, err := testClient(srv.URL, "TEST").GetPayment(context.Background(), "tx-7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ParseStatus(p.Status) != StatusSucceeded {
		t.Fatalf("want succeeded, got %s", p.Status)
	}
	if p.OwnerID() != "42" {
		t.Fatalf("want owner 42, got %q", p.OwnerID())
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"pending":             StatusPending,
		"waiting_for_capture": StatusWaitingForCapture,
		"succeeded":           StatusSucceeded,
		"canceled":            StatusCanceled,
		"":                    StatusUnknown,
		"shiny_new_status":    StatusUnknown,
	}
	for raw, want := range cases {
		if got := ParseStatus(raw); got != want {
			t.Errorf("ParseStatus(%q): want %s, got %s", raw, want, got)
		}
	}
}
