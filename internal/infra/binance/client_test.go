package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"voice_trader/internal/domain"
	"voice_trader/internal/infra"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/fapi/v1/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"50000.00"}`))
	})
	mux.HandleFunc("/fapi/v1/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING"},
			{"symbol":"ETHUSDT","status":"TRADING"},
			{"symbol":"LUNAUSDT","status":"BREAK"}
		]}`))
	})
	mux.HandleFunc("/fapi/v2/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-MBX-APIKEY") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":-2014,"msg":"API-key format invalid."}`))
			return
		}
		if !strings.Contains(r.URL.RawQuery, "signature=") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":-1022,"msg":"Signature for this request is not valid."}`))
			return
		}
		w.Write([]byte(`[
			{"asset":"BNB","balance":"0","availableBalance":"0"},
			{"asset":"USDT","balance":"1000.5","availableBalance":"900.25"}
		]`))
	})
	mux.HandleFunc("/fapi/v1/order", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte(`{
			"orderId": 123456,
			"clientOrderId": "ord_abc",
			"symbol": "BTCUSDT",
			"side": "BUY",
			"type": "MARKET",
			"status": "FILLED",
			"origQty": "0.02",
			"executedQty": "0.02",
			"avgPrice": "50010.5",
			"price": "0",
			"cumQuote": "1000.21",
			"updateTime": 1700000000000
		}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	cfg := &infra.Config{}
	cfg.API.Binance.RestURL = url
	cfg.API.Binance.APIKey = "key"
	cfg.API.Binance.APISecret = "secret"
	return NewClient(cfg)
}

func TestClient_GetTicker(t *testing.T) {
	c := testClient(t, testServer(t).URL)

	ticker, err := c.GetTicker(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetTicker: %v", err)
	}
	if ticker.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %s", ticker.Symbol)
	}
	if !ticker.Last.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("last = %s, want 50000", ticker.Last)
	}
}

func TestClient_NormalizeSymbol(t *testing.T) {
	c := testClient(t, testServer(t).URL)
	ctx := context.Background()

	cases := []struct {
		in   string
		want string
	}{
		{"BTCUSDT", "BTCUSDT"},
		{"btc/usdt", "BTCUSDT"},
		{"BTC-USDT", "BTCUSDT"},
		{"eth", "ETHUSDT"},
		{"xyz", ""},
		{"LUNAUSDT", ""}, // listed but not trading
		{"", ""},
	}
	for _, tc := range cases {
		got, err := c.NormalizeSymbol(ctx, tc.in)
		if err != nil {
			t.Fatalf("NormalizeSymbol(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClient_ValidateSymbol(t *testing.T) {
	c := testClient(t, testServer(t).URL)
	ctx := context.Background()

	ok, err := c.ValidateSymbol(ctx, "ETHUSDT")
	if err != nil || !ok {
		t.Errorf("ETHUSDT should validate, ok=%v err=%v", ok, err)
	}
	ok, err = c.ValidateSymbol(ctx, "LUNAUSDT")
	if err != nil || ok {
		t.Errorf("non-trading symbol should not validate, ok=%v err=%v", ok, err)
	}
}

func TestClient_GetBalance(t *testing.T) {
	c := testClient(t, testServer(t).URL)

	bal, err := c.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.Currency != "USDT" {
		t.Errorf("currency = %s", bal.Currency)
	}
	if !bal.Free.Equal(decimal.RequireFromString("900.25")) {
		t.Errorf("free = %s, want 900.25", bal.Free)
	}
	if !bal.Total.Equal(decimal.RequireFromString("1000.5")) {
		t.Errorf("total = %s, want 1000.5", bal.Total)
	}
}

func TestClient_CreateOrder(t *testing.T) {
	c := testClient(t, testServer(t).URL)

	order, err := c.CreateOrder(context.Background(), domain.OrderParams{
		Symbol:        "BTCUSDT",
		Side:          domain.SideBuy,
		OrderType:     domain.OrderTypeMarket,
		ClientOrderID: "ord_abc",
	}, decimal.RequireFromString("0.02"))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.ID != "123456" {
		t.Errorf("id = %s", order.ID)
	}
	if order.Status != "closed" {
		t.Errorf("status = %s, want closed (FILLED)", order.Status)
	}
	if !order.Filled.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("filled = %s", order.Filled)
	}
	if !order.Average.Equal(decimal.RequireFromString("50010.5")) {
		t.Errorf("average = %s", order.Average)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	t.Cleanup(srv.Close)
	c := testClient(t, srv.URL)

	_, err := c.GetTicker(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected api error")
	}
	if !strings.Contains(err.Error(), "Invalid symbol") {
		t.Errorf("error %q should carry the venue message", err)
	}
}

func TestClient_NetworkErrorIsRetriable(t *testing.T) {
	// Point at a closed port.
	c := testClient(t, "http://127.0.0.1:1")

	_, err := c.GetTicker(context.Background(), "BTCUSDT")
	if err == nil {
		t.Fatal("expected network error")
	}
	if !domain.IsRetriable(err) {
		t.Errorf("transport failure should be retriable, got %T: %v", err, err)
	}
}

func TestMapOrderStatus(t *testing.T) {
	cases := map[string]string{
		"FILLED":           "closed",
		"NEW":              "open",
		"PARTIALLY_FILLED": "open",
		"CANCELED":         "canceled",
		"REJECTED":         "rejected",
		"WEIRD":            "weird",
	}
	for in, want := range cases {
		if got := mapOrderStatus(in); got != want {
			t.Errorf("mapOrderStatus(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestTickerWorker_Cache(t *testing.T) {
	cfg := &infra.Config{}
	cfg.API.Binance.Symbols = []string{"BTCUSDT"}
	w := NewTickerWorker(cfg)

	if _, ok := w.Get("BTCUSDT"); ok {
		t.Error("empty cache must miss")
	}

	w.handleMessage([]byte(`{"e":"24hrTicker","s":"BTCUSDT","c":"50000.5","b":"50000.0","a":"50001.0"}`))

	ticker, ok := w.Get("BTCUSDT")
	if !ok {
		t.Fatal("cache miss after update")
	}
	if !ticker.Last.Equal(decimal.RequireFromString("50000.5")) {
		t.Errorf("last = %s", ticker.Last)
	}
	if !ticker.Bid.Equal(decimal.RequireFromString("50000.0")) {
		t.Errorf("bid = %s", ticker.Bid)
	}

	// Non-ticker frames are ignored.
	w.handleMessage([]byte(`{"result":null,"id":1}`))
	if _, ok := w.Get("BTCUSDT"); !ok {
		t.Error("cache lost after unrelated frame")
	}
}
