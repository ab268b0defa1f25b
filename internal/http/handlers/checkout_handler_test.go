package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"mintmart/internal/chain"
	"mintmart/internal/config"
	"mintmart/internal/events"
	"mintmart/internal/http/handlers"
	"mintmart/internal/payment"
)

const wallet = "0x00000000000000000000000000000000000000aa"

type harness struct {
	app   *fiber.App
	chain *chain.Fake
	pay   *payment.Fake
	sid   *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE products(id TEXT PRIMARY KEY, title TEXT, description TEXT,
	  price_minor INTEGER, nft_collection TEXT, active INTEGER DEFAULT 1,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE inventory(product_id TEXT PRIMARY KEY, qty INTEGER, updated_at TEXT);
	CREATE TABLE carts(id TEXT PRIMARY KEY, session_id TEXT UNIQUE NOT NULL, updated_at TEXT);
	CREATE TABLE cart_items(cart_id TEXT, product_id TEXT, qty INTEGER,
	  created_at TEXT, updated_at TEXT, PRIMARY KEY(cart_id, product_id));
	CREATE TABLE orders(id TEXT PRIMARY KEY, wallet_address TEXT, idempotency_key TEXT UNIQUE,
	  total_minor INTEGER, state TEXT DEFAULT 'pending', reason TEXT DEFAULT '',
	  attempts INTEGER DEFAULT 0, version INTEGER DEFAULT 1, auth_ref TEXT DEFAULT '',
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE order_items(order_id TEXT, product_id TEXT, qty INTEGER,
	  unit_price_minor INTEGER, PRIMARY KEY(order_id, product_id));

	INSERT INTO products(id,title,description,price_minor,nft_collection) VALUES
	  ('tee-001','Mint Tee','',500,NULL),
	  ('cap-ape-001','Ape Club Cap','',2500,'ape-club');
	INSERT INTO inventory(product_id,qty) VALUES ('tee-001',10), ('cap-ape-001',5);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		OracleCacheTTL: time.Second,
		RetryAttempts:  2,
		RetryBaseDelay: time.Millisecond,
		Gating:         config.GatingBoolean,
	}
	chainFake := chain.NewFake()
	payFake := payment.NewFake()
	deps := handlers.NewDeps(db, cfg, chainFake, payFake, events.Noop{})

	app := fiber.New()
	app.Use(requestid.New())
	api := app.Group("/api/v1")
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart", deps.CartHandler.Add)
	api.Post("/cart/update", deps.CartHandler.Update)
	api.Post("/checkout", deps.CheckoutHandler.Checkout)
	api.Get("/orders/:id", deps.OrderHandler.View)
	api.Post("/orders/:id/cancel", deps.CheckoutHandler.Cancel)

	return &harness{app: app, chain: chainFake, pay: payFake}
}

func (h *harness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.sid != nil {
		req.AddCookie(h.sid)
	}
	resp, err := h.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			h.sid = c
		}
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatal(err)
	}
}

func TestCheckoutEndpointHappyPath(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, "POST", "/api/v1/cart", fiber.Map{"productId": "tee-001", "qty": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cart add: want 200, got %d", resp.StatusCode)
	}

	resp = h.do(t, "POST", "/api/v1/checkout", fiber.Map{
		"walletAddress":  wallet,
		"idempotencyKey": "key-http-0001",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout: want 200, got %d", resp.StatusCode)
	}
	var out struct {
		OrderID string `json:"orderId"`
		State   string `json:"state"`
	}
	decode(t, resp, &out)
	if out.State != "completed" || out.OrderID == "" {
		t.Fatalf("want completed order, got %+v", out)
	}

	// order is fetchable with line items and total
	resp = h.do(t, "GET", "/api/v1/orders/"+out.OrderID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("order view: want 200, got %d", resp.StatusCode)
	}
	var ord struct {
		State      string `json:"state"`
		TotalMinor int64  `json:"totalMinor"`
		LineItems  []struct {
			ProductID string `json:"productId"`
			Qty       int    `json:"qty"`
		} `json:"lineItems"`
	}
	decode(t, resp, &ord)
	if ord.TotalMinor != 1000 || len(ord.LineItems) != 1 || ord.LineItems[0].Qty != 2 {
		t.Fatalf("bad order payload: %+v", ord)
	}

	// cart is empty after completion
	var cv struct {
		Items []any `json:"items"`
	}
	decode(t, h.do(t, "GET", "/api/v1/cart", nil), &cv)
	if len(cv.Items) != 0 {
		t.Fatalf("cart should be empty, got %+v", cv.Items)
	}
}

func TestCheckoutEndpointValidation(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, "POST", "/api/v1/checkout", fiber.Map{
		"walletAddress":  "not-a-wallet",
		"idempotencyKey": "key-http-0002",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad wallet: want 400, got %d", resp.StatusCode)
	}

	resp = h.do(t, "POST", "/api/v1/checkout", fiber.Map{
		"walletAddress":  wallet,
		"idempotencyKey": "x", // too short
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad key: want 400, got %d", resp.StatusCode)
	}

	// empty cart rejected before any order exists
	resp = h.do(t, "POST", "/api/v1/checkout", fiber.Map{
		"walletAddress":  wallet,
		"idempotencyKey": "key-http-0003",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty cart: want 400, got %d", resp.StatusCode)
	}
}

func TestCheckoutEndpointGatedFailure(t *testing.T) {
	h := newHarness(t)

	h.do(t, "POST", "/api/v1/cart", fiber.Map{"productId": "cap-ape-001", "qty": 1})
	resp := h.do(t, "POST", "/api/v1/checkout", fiber.Map{
		"walletAddress":  wallet,
		"idempotencyKey": "key-http-0004",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200 with failure state, got %d", resp.StatusCode)
	}
	var out struct {
		State  string `json:"state"`
		Reason string `json:"reason"`
	}
	decode(t, resp, &out)
	if out.State != "eligibility_failed" {
		t.Fatalf("want eligibility_failed, got %+v", out)
	}
	if out.Reason == "" {
		t.Fatal("reason must name the failing line item")
	}
	if h.pay.Authorizes != 0 {
		t.Fatalf("no payment attempt may occur, got %d", h.pay.Authorizes)
	}
}

func TestCartEndpointInvalidQty(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, "POST", "/api/v1/cart", fiber.Map{"productId": "tee-001", "qty": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 for qty 0 on add, got %d", resp.StatusCode)
	}

	// update-to-zero is removal, not an error
	h.do(t, "POST", "/api/v1/cart", fiber.Map{"productId": "tee-001", "qty": 2})
	resp = h.do(t, "POST", "/api/v1/cart/update", fiber.Map{"productId": "tee-001", "qty": 0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update to zero should succeed, got %d", resp.StatusCode)
	}
	var cv struct {
		Items []any `json:"items"`
	}
	decode(t, resp, &cv)
	if len(cv.Items) != 0 {
		t.Fatalf("line should be removed, got %+v", cv.Items)
	}
}
