package execution

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice_trader/internal/domain"
)

type fakeGateway struct {
	canon      map[string]string // accepted spelling -> canonical symbol
	untradable map[string]bool
	last       decimal.Decimal
	free       decimal.Decimal

	tickerCalls  int
	tickerPanic  bool
	balanceCalls int
	createCalls  int
	createErr    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		canon: map[string]string{
			"BTCUSDT":  "BTCUSDT",
			"btc/usdt": "BTCUSDT",
			"ETHUSDT":  "ETHUSDT",
		},
		last: decimal.NewFromInt(50000),
		free: decimal.NewFromInt(10000),
	}
}

func (g *fakeGateway) GetTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	g.tickerCalls++
	if g.tickerPanic {
		panic("boom")
	}
	return domain.Ticker{Symbol: symbol, Last: g.last}, nil
}

func (g *fakeGateway) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	return !g.untradable[symbol], nil
}

func (g *fakeGateway) NormalizeSymbol(ctx context.Context, symbol string) (string, error) {
	return g.canon[symbol], nil
}

func (g *fakeGateway) GetBalance(ctx context.Context) (domain.AccountBalance, error) {
	g.balanceCalls++
	return domain.AccountBalance{Currency: "USDT", Free: g.free, Total: g.free}, nil
}

func (g *fakeGateway) CreateOrder(ctx context.Context, params domain.OrderParams, qty decimal.Decimal) (domain.ExchangeOrder, error) {
	g.createCalls++
	if g.createErr != nil {
		return domain.ExchangeOrder{}, g.createErr
	}
	return domain.ExchangeOrder{
		ID:      "ex-1",
		Symbol:  params.Symbol,
		Side:    params.Side,
		Type:    params.OrderType,
		Status:  "closed",
		Amount:  qty,
		Filled:  qty,
		Price:   g.last,
		Average: g.last,
		Cost:    qty.Mul(g.last),
	}, nil
}

type fakeStore struct {
	orders    []*domain.OrderRecord
	logs      []string
	insertErr error
	logErr    error
}

func (s *fakeStore) InsertOrder(rec *domain.OrderRecord) (uint, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.orders = append(s.orders, rec)
	return uint(len(s.orders)), nil
}

func (s *fakeStore) InsertSystemLog(level, message string, context map[string]any) error {
	if s.logErr != nil {
		return s.logErr
	}
	s.logs = append(s.logs, level+": "+message)
	return nil
}

type riskFunc func(domain.OrderRiskContext) error

func (f riskFunc) Check(rc domain.OrderRiskContext) error { return f(rc) }

var allowAll = riskFunc(func(domain.OrderRiskContext) error { return nil })

func marketParams() domain.OrderParams {
	return domain.OrderParams{
		Symbol:     "BTCUSDT",
		Side:       domain.SideBuy,
		Amount:     decimal.NewFromInt(1000),
		AmountType: domain.AmountUSD,
		Leverage:   10,
		OrderType:  domain.OrderTypeMarket,
	}
}

func TestExecutor_TypeGuard(t *testing.T) {
	gw := newFakeGateway()
	store := &fakeStore{}
	ex := NewExecutor(gw, NewPaperEngine(), allowAll, store, true)

	params := marketParams()
	params.OrderType = domain.OrderTypeLimit

	res := ex.ExecuteMarketOrder(context.Background(), params)

	assert.False(t, res.Success)
	assert.Equal(t, "validation", res.Raw["error_kind"])
	// Type guard failures leave no trace anywhere.
	assert.Empty(t, store.orders)
	assert.Empty(t, store.logs)
	assert.Zero(t, gw.tickerCalls)
}

func TestExecutor_LimitRequiresPrice(t *testing.T) {
	ex := NewExecutor(newFakeGateway(), NewPaperEngine(), allowAll, nil, true)

	params := marketParams()
	params.OrderType = domain.OrderTypeLimit
	params.Price = nil

	res := ex.ExecuteLimitOrder(context.Background(), params)
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "price")
}

func TestExecutor_PaperMarketOrder(t *testing.T) {
	gw := newFakeGateway()
	store := &fakeStore{}
	ex := NewExecutor(gw, NewPaperEngine(), allowAll, store, true)

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())

	require.True(t, res.Success, "error: %s", res.ErrorMessage)
	assert.Equal(t, "paper-1", res.OrderID)
	// 1000 USD at 50000 with 10x: qty 0.02, margin 100.
	assert.True(t, res.FilledQty.Equal(decimal.RequireFromString("0.02")), "qty = %s", res.FilledQty)
	assert.True(t, res.AvgPrice.Equal(decimal.NewFromInt(50000)))

	assert.Zero(t, gw.balanceCalls, "paper mode must never query real balance")
	assert.Zero(t, gw.createCalls, "paper mode must never hit the venue")

	require.Len(t, store.orders, 1)
	rec := store.orders[0]
	assert.True(t, rec.IsPaperTrade)
	assert.Equal(t, "100", rec.RequiredMargin)
	assert.Equal(t, "closed", rec.Status)
	require.Len(t, store.logs, 1)
	assert.Equal(t, "info: order executed", store.logs[0])
}

func TestExecutor_QuantityAmountType(t *testing.T) {
	store := &fakeStore{}
	ex := NewExecutor(newFakeGateway(), NewPaperEngine(), allowAll, store, true)

	params := marketParams()
	params.Amount = decimal.RequireFromString("0.02")
	params.AmountType = domain.AmountQty

	res := ex.ExecuteMarketOrder(context.Background(), params)

	require.True(t, res.Success, "error: %s", res.ErrorMessage)
	// Same position as 1000 USD notional: margin 100 either way.
	require.Len(t, store.orders, 1)
	assert.Equal(t, "100", store.orders[0].RequiredMargin)
}

func TestExecutor_RealModeBalanceCheck(t *testing.T) {
	gw := newFakeGateway()
	gw.free = decimal.NewFromInt(50) // margin will be 100
	store := &fakeStore{}
	ex := NewExecutor(gw, NewPaperEngine(), allowAll, store, false)

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())

	assert.False(t, res.Success)
	assert.Equal(t, "insufficient_balance", res.Raw["error_kind"])
	assert.Contains(t, res.ErrorMessage, "100")
	assert.Contains(t, res.ErrorMessage, "50")
	assert.Zero(t, gw.createCalls)

	require.Len(t, store.orders, 1)
	assert.Equal(t, "failed", store.orders[0].Status)
}

func TestExecutor_RealModeDispatch(t *testing.T) {
	gw := newFakeGateway()
	ex := NewExecutor(gw, NewPaperEngine(), allowAll, &fakeStore{}, false)

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())

	require.True(t, res.Success, "error: %s", res.ErrorMessage)
	assert.Equal(t, "ex-1", res.OrderID)
	assert.Equal(t, 1, gw.balanceCalls)
	assert.Equal(t, 1, gw.createCalls)
}

func TestExecutor_RiskRejectionAbortsBeforeDispatch(t *testing.T) {
	gw := newFakeGateway()
	paper := NewPaperEngine()
	deny := riskFunc(func(rc domain.OrderRiskContext) error {
		return domain.NewRiskLimitError("order notional 1000 USD exceeds limit 500 USD")
	})
	ex := NewExecutor(gw, paper, deny, &fakeStore{}, true)

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())

	assert.False(t, res.Success)
	assert.Equal(t, "risk_limit", res.Raw["error_kind"])
	assert.Zero(t, gw.createCalls)
	assert.Zero(t, paper.counter, "no paper order may exist after a risk rejection")
}

func TestExecutor_RiskSeesPaperOrders(t *testing.T) {
	var seen *domain.OrderRiskContext
	spy := riskFunc(func(rc domain.OrderRiskContext) error {
		seen = &rc
		return nil
	})
	ex := NewExecutor(newFakeGateway(), NewPaperEngine(), spy, nil, true)

	ex.ExecuteMarketOrder(context.Background(), marketParams())

	require.NotNil(t, seen, "risk check must run in paper mode too")
	assert.True(t, seen.IsPaper)
	assert.True(t, seen.NotionalUSD.Equal(decimal.NewFromInt(1000)))
}

func TestExecutor_SymbolHandling(t *testing.T) {
	t.Run("loose spelling is canonicalized", func(t *testing.T) {
		store := &fakeStore{}
		ex := NewExecutor(newFakeGateway(), NewPaperEngine(), allowAll, store, true)

		params := marketParams()
		params.Symbol = "btc/usdt"

		res := ex.ExecuteMarketOrder(context.Background(), params)
		require.True(t, res.Success, "error: %s", res.ErrorMessage)
		require.Len(t, store.orders, 1)
		assert.Equal(t, "BTCUSDT", store.orders[0].Symbol)
	})

	t.Run("unknown symbol is a validation failure", func(t *testing.T) {
		ex := NewExecutor(newFakeGateway(), NewPaperEngine(), allowAll, nil, true)

		params := marketParams()
		params.Symbol = "DOGEBTC"

		res := ex.ExecuteMarketOrder(context.Background(), params)
		assert.False(t, res.Success)
		assert.Equal(t, "validation", res.Raw["error_kind"])
		assert.Contains(t, res.ErrorMessage, "DOGEBTC")
	})
}

func TestExecutor_NoUsablePrice(t *testing.T) {
	gw := newFakeGateway()
	gw.last = decimal.Zero
	ex := NewExecutor(gw, NewPaperEngine(), allowAll, nil, true)

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())

	assert.False(t, res.Success)
	// Missing price is an execution problem, not bad user input.
	assert.Equal(t, "execution", res.Raw["error_kind"])
}

func TestExecutor_LimitOrderUsesSuppliedPrice(t *testing.T) {
	gw := newFakeGateway()
	ex := NewExecutor(gw, NewPaperEngine(), allowAll, nil, true)

	price := decimal.NewFromInt(40000)
	params := marketParams()
	params.OrderType = domain.OrderTypeLimit
	params.Price = &price

	res := ex.ExecuteLimitOrder(context.Background(), params)

	require.True(t, res.Success, "error: %s", res.ErrorMessage)
	assert.Zero(t, gw.tickerCalls, "limit orders must not query the ticker")
	assert.True(t, res.AvgPrice.Equal(price))
}

func TestExecutor_PersistenceFailureKeepsResult(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("disk full"), logErr: errors.New("disk full")}
	ex := NewExecutor(newFakeGateway(), NewPaperEngine(), allowAll, store, true)

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())

	assert.True(t, res.Success, "a trade is never overturned by bookkeeping failure")
	assert.Equal(t, "paper-1", res.OrderID)
}

func TestExecutor_ValidationFailures(t *testing.T) {
	ex := NewExecutor(newFakeGateway(), NewPaperEngine(), allowAll, nil, true)

	cases := []struct {
		name   string
		mutate func(*domain.OrderParams)
		detail string
	}{
		{"bad side", func(p *domain.OrderParams) { p.Side = "hold" }, "side"},
		{"bad amount type", func(p *domain.OrderParams) { p.AmountType = "eur" }, "amount type"},
		{"zero amount", func(p *domain.OrderParams) { p.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(p *domain.OrderParams) { p.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"leverage too high", func(p *domain.OrderParams) { p.Leverage = 200 }, "leverage"},
		{"leverage zero", func(p *domain.OrderParams) { p.Leverage = 0 }, "leverage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := marketParams()
			tc.mutate(&params)

			res := ex.ExecuteMarketOrder(context.Background(), params)
			assert.False(t, res.Success)
			assert.Equal(t, "validation", res.Raw["error_kind"])
			assert.True(t, strings.Contains(res.ErrorMessage, tc.detail), "message %q", res.ErrorMessage)
		})
	}
}

func TestExecutor_GeneratedClientOrderID(t *testing.T) {
	ex := NewExecutor(newFakeGateway(), NewPaperEngine(), allowAll, nil, true)

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())

	require.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Raw["client_order_id"], "ord_"))
}

func TestExecutor_UsableAfterRecoveredPanic(t *testing.T) {
	gw := newFakeGateway()
	gw.tickerPanic = true
	ex := NewExecutor(gw, NewPaperEngine(), allowAll, nil, true)

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "unexpected error")

	// The pipeline lock must have been released; later orders (and mode
	// switches) may not block on the recovered panic.
	gw.tickerPanic = false
	done := make(chan domain.OrderResult, 1)
	go func() { done <- ex.ExecuteMarketOrder(context.Background(), marketParams()) }()

	select {
	case res := <-done:
		require.True(t, res.Success, "error: %s", res.ErrorMessage)
		assert.Equal(t, "paper-1", res.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("second order blocked after a recovered panic")
	}
}

func TestExecutor_SetPaperTrading(t *testing.T) {
	gw := newFakeGateway()
	ex := NewExecutor(gw, NewPaperEngine(), allowAll, nil, true)

	assert.True(t, ex.PaperTrading())
	ex.SetPaperTrading(false)
	assert.False(t, ex.PaperTrading())

	res := ex.ExecuteMarketOrder(context.Background(), marketParams())
	require.True(t, res.Success, "error: %s", res.ErrorMessage)
	assert.Equal(t, 1, gw.createCalls)
}
