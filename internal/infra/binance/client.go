package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"voice_trader/internal/domain"
	"voice_trader/internal/infra"
)

// Client is the Binance USDT-M futures REST client (boundary layer).
// Implements domain.MarketGateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     *slog.Logger

	// exchangeInfo symbol cache
	symMu     sync.RWMutex
	symbols   map[string]bool
	symbolsAt time.Time

	// optional live price cache fed by the websocket worker
	ticker *TickerWorker
}

const symbolCacheTTL = 10 * time.Minute

// NewClient creates a new Binance API client.
func NewClient(cfg *infra.Config) *Client {
	baseURL := cfg.API.Binance.RestURL
	if baseURL == "" {
		baseURL = mainnetRestURL
		if cfg.API.Binance.Testnet {
			baseURL = testnetRestURL
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		signer: NewSigner(cfg.API.Binance.APIKey, cfg.API.Binance.APISecret),
		logger: slog.Default().With("module", "binance_client"),
	}
}

// AttachTickerWorker wires a websocket price cache; GetTicker then prefers
// the live stream over a REST round trip.
func (c *Client) AttachTickerWorker(w *TickerWorker) {
	c.ticker = w
}

// GetTicker returns current market data for a canonical symbol.
func (c *Client) GetTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	if c.ticker != nil {
		if t, ok := c.ticker.Get(symbol); ok {
			return t, nil
		}
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/ticker/price", params, false)
	if err != nil {
		return domain.Ticker{}, err
	}

	var resp priceTickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Ticker{}, fmt.Errorf("failed to parse ticker response: %w", err)
	}
	last, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("unparsable ticker price %q: %w", resp.Price, err)
	}

	return domain.Ticker{Symbol: resp.Symbol, Last: last}, nil
}

// ValidateSymbol reports whether the venue currently trades the symbol.
func (c *Client) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	set, err := c.symbolSet(ctx)
	if err != nil {
		return false, err
	}
	return set[symbol], nil
}

// NormalizeSymbol maps a loosely written symbol to the venue's canonical
// form ("btc/usdt" -> "BTCUSDT", "eth" -> "ETHUSDT"). Empty when the venue
// does not trade it.
func (c *Client) NormalizeSymbol(ctx context.Context, symbol string) (string, error) {
	canon := strings.ToUpper(symbol)
	for _, sep := range []string{"/", "-", "_", " "} {
		canon = strings.ReplaceAll(canon, sep, "")
	}
	if canon == "" {
		return "", nil
	}
	if !strings.HasSuffix(canon, "USDT") {
		canon += "USDT"
	}

	set, err := c.symbolSet(ctx)
	if err != nil {
		return "", err
	}
	if !set[canon] {
		return "", nil
	}
	return canon, nil
}

// GetBalance returns the USDT futures wallet balance.
func (c *Client) GetBalance(ctx context.Context) (domain.AccountBalance, error) {
	body, err := c.do(ctx, http.MethodGet, "/fapi/v2/balance", url.Values{}, true)
	if err != nil {
		return domain.AccountBalance{}, err
	}

	var entries []balanceEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return domain.AccountBalance{}, fmt.Errorf("failed to parse balance response: %w", err)
	}

	for _, e := range entries {
		if e.Asset != "USDT" {
			continue
		}
		free, err := decimal.NewFromString(e.AvailableBalance)
		if err != nil {
			return domain.AccountBalance{}, fmt.Errorf("unparsable balance %q: %w", e.AvailableBalance, err)
		}
		total, err := decimal.NewFromString(e.Balance)
		if err != nil {
			return domain.AccountBalance{}, fmt.Errorf("unparsable balance %q: %w", e.Balance, err)
		}
		return domain.AccountBalance{Currency: "USDT", Free: free, Total: total}, nil
	}
	return domain.AccountBalance{}, fmt.Errorf("no USDT balance entry in response")
}

// CreateOrder submits an order and returns the venue's view of it.
func (c *Client) CreateOrder(ctx context.Context, params domain.OrderParams, qty decimal.Decimal) (domain.ExchangeOrder, error) {
	values := url.Values{}
	values.Set("symbol", params.Symbol)
	values.Set("side", strings.ToUpper(params.Side))
	values.Set("type", strings.ToUpper(params.OrderType))
	values.Set("quantity", qty.String())
	if params.ClientOrderID != "" {
		values.Set("newClientOrderId", params.ClientOrderID)
	}
	if params.ReduceOnly {
		values.Set("reduceOnly", "true")
	}
	if params.OrderType == domain.OrderTypeLimit {
		values.Set("price", params.Price.String())
		values.Set("timeInForce", "GTC")
	}

	body, err := c.do(ctx, http.MethodPost, "/fapi/v1/order", values, true)
	if err != nil {
		return domain.ExchangeOrder{}, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ExchangeOrder{}, fmt.Errorf("failed to parse order response: %w", err)
	}

	order := domain.ExchangeOrder{
		ID:        strconv.FormatInt(resp.OrderID, 10),
		Symbol:    resp.Symbol,
		Side:      strings.ToLower(resp.Side),
		Type:      strings.ToLower(resp.Type),
		Status:    mapOrderStatus(resp.Status),
		Amount:    parseDecimal(resp.OrigQty),
		Filled:    parseDecimal(resp.ExecutedQty),
		Price:     parseDecimal(resp.Price),
		Average:   parseDecimal(resp.AvgPrice),
		Cost:      parseDecimal(resp.CumQuote),
		Timestamp: resp.UpdateTime,
	}

	c.logger.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("symbol", order.Symbol),
		slog.String("status", order.Status))
	return order, nil
}

func mapOrderStatus(status string) string {
	switch status {
	case "FILLED":
		return "closed"
	case "NEW", "PARTIALLY_FILLED":
		return "open"
	case "CANCELED", "EXPIRED":
		return "canceled"
	case "REJECTED":
		return "rejected"
	default:
		return strings.ToLower(status)
	}
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// symbolSet returns the cached exchangeInfo symbol list, refreshing it when
// stale.
func (c *Client) symbolSet(ctx context.Context) (map[string]bool, error) {
	c.symMu.RLock()
	if c.symbols != nil && time.Since(c.symbolsAt) < symbolCacheTTL {
		set := c.symbols
		c.symMu.RUnlock()
		return set, nil
	}
	c.symMu.RUnlock()

	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/exchangeInfo", url.Values{}, false)
	if err != nil {
		return nil, err
	}

	var resp exchangeInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse exchangeInfo: %w", err)
	}

	set := make(map[string]bool, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status == "TRADING" {
			set[s.Symbol] = true
		}
	}

	c.symMu.Lock()
	c.symbols = set
	c.symbolsAt = time.Now()
	c.symMu.Unlock()
	return set, nil
}

// do handles auth headers, serialization and the Binance error envelope.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error) {
	query := params.Encode()
	if signed {
		query = c.signer.SignQuery(params)
	}

	reqURL := c.baseURL + path
	if query != "" {
		reqURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if signed {
		for k, v := range c.signer.AuthHeaders() {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError(method+" "+path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError("read "+path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("binance api error: code=%d msg=%s", apiErr.Code, apiErr.Msg)
		}
		return nil, fmt.Errorf("binance api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	return body, nil
}
