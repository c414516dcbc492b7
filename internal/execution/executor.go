package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"voice_trader/internal/domain"
)

const (
	minLeverage = 1
	maxLeverage = 125
)

// RiskChecker is the per-order limit gate. The executor invokes it on every
// order, paper mode included.
type RiskChecker interface {
	Check(rc domain.OrderRiskContext) error
}

// Executor runs the order pipeline: type guard, parameter validation,
// effective price, position sizing, balance check, risk check, dispatch,
// persistence. Every entry point returns an OrderResult; expected failure
// categories never escape as errors and unexpected panics are converted to
// generic failure results at the boundary.
type Executor struct {
	gateway domain.MarketGateway
	paper   *PaperEngine
	risk    RiskChecker
	store   domain.OrderStore // may be nil; persistence is then skipped
	logger  *slog.Logger

	// mu serializes pipeline runs. This also protects the paper engine's
	// unsynchronized order counter.
	mu        sync.Mutex
	paperMode bool
}

func NewExecutor(gateway domain.MarketGateway, paper *PaperEngine, risk RiskChecker, store domain.OrderStore, paperMode bool) *Executor {
	return &Executor{
		gateway:   gateway,
		paper:     paper,
		risk:      risk,
		store:     store,
		logger:    slog.Default().With("module", "executor"),
		paperMode: paperMode,
	}
}

// SetPaperTrading switches between simulated and real dispatch. Takes
// effect for the next order; an in-flight pipeline is unaffected.
func (e *Executor) SetPaperTrading(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paperMode = on
}

// PaperTrading reports the current dispatch mode.
func (e *Executor) PaperTrading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paperMode
}

// ExecuteMarketOrder places a market order. params.OrderType must be
// "market"; anything else fails fast without touching the venue or store.
func (e *Executor) ExecuteMarketOrder(ctx context.Context, params domain.OrderParams) domain.OrderResult {
	return e.execute(ctx, params, domain.OrderTypeMarket)
}

// ExecuteLimitOrder places a limit order. Requires a positive price.
func (e *Executor) ExecuteLimitOrder(ctx context.Context, params domain.OrderParams) domain.OrderResult {
	return e.execute(ctx, params, domain.OrderTypeLimit)
}

// sizing carries the pipeline's derived numbers into persistence.
type sizing struct {
	price    decimal.Decimal
	qty      decimal.Decimal
	notional decimal.Decimal
	margin   decimal.Decimal
}

func (e *Executor) execute(ctx context.Context, params domain.OrderParams, wantType string) (result domain.OrderResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("order pipeline panicked", slog.Any("panic", r))
			result = failureResult(domain.NewExecutionError(fmt.Sprintf("unexpected error: %v", r), nil))
		}
	}()

	// Type guard. Fails before any side effect; deliberately not persisted.
	if params.OrderType != wantType {
		return failureResult(domain.NewValidationError(fmt.Sprintf(
			"order type %q not accepted here, want %q", params.OrderType, wantType)))
	}
	if wantType == domain.OrderTypeLimit && (params.Price == nil || !params.Price.IsPositive()) {
		return failureResult(domain.NewValidationError("limit order requires a positive price"))
	}

	if params.ClientOrderID == "" {
		params.ClientOrderID = "ord_" + uuid.New().String()
	}

	paper, res, sz := e.runLocked(ctx, &params)
	e.persist(params, sz, res, paper)
	return res
}

// runLocked serializes pipeline runs. The deferred unlock keeps the
// executor usable when a gateway/store implementation panics; the recover
// in execute then turns the panic into a failure result.
func (e *Executor) runLocked(ctx context.Context, params *domain.OrderParams) (bool, domain.OrderResult, sizing) {
	e.mu.Lock()
	defer e.mu.Unlock()
	paper := e.paperMode
	res, sz := e.pipeline(ctx, params, paper)
	return paper, res, sz
}

func (e *Executor) pipeline(ctx context.Context, params *domain.OrderParams, paper bool) (domain.OrderResult, sizing) {
	var sz sizing

	if err := e.validateOrder(ctx, params); err != nil {
		return failureResult(err), sz
	}

	price, err := e.effectivePrice(ctx, *params)
	if err != nil {
		return failureResult(err), sz
	}

	sz, err = positionSize(params.Amount, price, params.Leverage, params.AmountType)
	if err != nil {
		return failureResult(err), sz
	}

	// Paper trades never check the real balance.
	if !paper {
		bal, err := e.gateway.GetBalance(ctx)
		if err != nil {
			return failureResult(domain.NewExecutionError("balance query failed", err)), sz
		}
		if sz.margin.GreaterThan(bal.Free) {
			return failureResult(domain.NewInsufficientBalanceError(fmt.Sprintf(
				"required margin %s %s exceeds free balance %s",
				sz.margin.String(), bal.Currency, bal.Free.String()))), sz
		}
	}

	if err := e.risk.Check(domain.OrderRiskContext{
		Symbol:      params.Symbol,
		Side:        params.Side,
		NotionalUSD: sz.notional,
		Leverage:    params.Leverage,
		IsPaper:     paper,
	}); err != nil {
		return failureResult(err), sz
	}

	var order domain.ExchangeOrder
	if paper {
		order = e.paper.CreateOrder(*params, sz.qty, sz.price)
	} else {
		order, err = e.gateway.CreateOrder(ctx, *params, sz.qty)
		if err != nil {
			return failureResult(domain.NewExecutionError("order placement failed", err)), sz
		}
	}

	e.logger.Info("order executed",
		slog.String("order_id", order.ID),
		slog.String("symbol", order.Symbol),
		slog.String("side", order.Side),
		slog.String("qty", order.Filled.String()),
		slog.String("avg_price", order.Average.String()),
		slog.Bool("paper", paper))

	return domain.OrderResult{
		Success:   true,
		OrderID:   order.ID,
		Status:    order.Status,
		FilledQty: order.Filled,
		AvgPrice:  order.Average,
		Raw: map[string]string{
			"cost":            order.Cost.String(),
			"client_order_id": params.ClientOrderID,
		},
	}, sz
}

func (e *Executor) validateOrder(ctx context.Context, params *domain.OrderParams) error {
	if params.Side != domain.SideBuy && params.Side != domain.SideSell {
		return domain.NewValidationError(fmt.Sprintf("invalid side: %q", params.Side))
	}
	if params.AmountType != domain.AmountUSD && params.AmountType != domain.AmountQty {
		return domain.NewValidationError(fmt.Sprintf("invalid amount type: %q", params.AmountType))
	}
	if !params.Amount.IsPositive() {
		return domain.NewValidationError(fmt.Sprintf("amount must be positive, got %s", params.Amount.String()))
	}
	if params.Leverage < minLeverage || params.Leverage > maxLeverage {
		return domain.NewValidationError(fmt.Sprintf(
			"leverage %d out of range (%d-%d)", params.Leverage, minLeverage, maxLeverage))
	}

	canon, err := e.gateway.NormalizeSymbol(ctx, params.Symbol)
	if err != nil {
		return domain.NewExecutionError("symbol lookup failed", err)
	}
	if canon == "" {
		return domain.NewValidationError(fmt.Sprintf("unknown symbol: %q", params.Symbol))
	}
	ok, err := e.gateway.ValidateSymbol(ctx, canon)
	if err != nil {
		return domain.NewExecutionError("symbol lookup failed", err)
	}
	if !ok {
		return domain.NewValidationError(fmt.Sprintf("symbol not tradable: %q", canon))
	}
	params.Symbol = canon
	return nil
}

// effectivePrice is the supplied price for limit orders and the live last
// price for market orders. No usable price is an execution error, not a
// validation error.
func (e *Executor) effectivePrice(ctx context.Context, params domain.OrderParams) (decimal.Decimal, error) {
	if params.OrderType == domain.OrderTypeLimit {
		return *params.Price, nil
	}
	ticker, err := e.gateway.GetTicker(ctx, params.Symbol)
	if err != nil {
		return decimal.Zero, domain.NewExecutionError("ticker query failed", err)
	}
	if !ticker.Last.IsPositive() {
		return decimal.Zero, domain.NewExecutionError(
			fmt.Sprintf("no usable price for %s", params.Symbol), domain.ErrNoPrice)
	}
	return ticker.Last, nil
}

// positionSize derives quantity, notional and required margin from the
// amount. amount_type=usd: notional=amount, qty=notional/price.
// amount_type=qty: qty=amount, notional=qty*price. margin=notional/leverage.
func positionSize(amount, price decimal.Decimal, leverage int, amountType string) (sizing, error) {
	if !price.IsPositive() {
		return sizing{}, domain.NewValidationError(
			fmt.Sprintf("invalid price: %s", price.String()))
	}

	var qty, notional decimal.Decimal
	switch amountType {
	case domain.AmountUSD:
		notional = amount
		qty = notional.Div(price)
	case domain.AmountQty:
		qty = amount
		notional = qty.Mul(price)
	default:
		return sizing{}, domain.NewValidationError(
			fmt.Sprintf("invalid amount type: %q", amountType))
	}

	if !qty.IsPositive() || !notional.IsPositive() {
		return sizing{}, domain.NewValidationError("position size computes to zero")
	}

	return sizing{
		price:    price,
		qty:      qty,
		notional: notional,
		margin:   notional.Div(decimal.NewFromInt(int64(leverage))),
	}, nil
}

// persist writes the order record and a summary log line. A trade result is
// never overturned by a bookkeeping failure.
func (e *Executor) persist(params domain.OrderParams, sz sizing, res domain.OrderResult, paper bool) {
	if e.store == nil {
		return
	}

	status := res.Status
	if !res.Success {
		status = "failed"
	}
	rec := &domain.OrderRecord{
		Exchange:         "binance",
		ExchangeOrderID:  res.OrderID,
		Symbol:           params.Symbol,
		Side:             params.Side,
		Type:             params.OrderType,
		Quantity:         sz.qty.String(),
		Price:            sz.price.String(),
		FilledQuantity:   res.FilledQty.String(),
		AverageFillPrice: res.AvgPrice.String(),
		RequiredMargin:   sz.margin.String(),
		Leverage:         params.Leverage,
		Status:           status,
		IsPaperTrade:     paper,
		VoiceCommand:     params.Extra["voice_command"],
		ErrorMessage:     res.ErrorMessage,
	}
	if _, err := e.store.InsertOrder(rec); err != nil {
		e.logger.Warn("order persistence failed", slog.Any("error", err),
			slog.String("order_id", res.OrderID))
	}

	level, message := "info", "order executed"
	if !res.Success {
		level, message = "warning", "order failed"
	}
	if err := e.store.InsertSystemLog(level, message, map[string]any{
		"symbol":   params.Symbol,
		"side":     params.Side,
		"order_id": res.OrderID,
		"status":   status,
		"is_paper": paper,
		"error":    res.ErrorMessage,
	}); err != nil {
		e.logger.Warn("system log write failed", slog.Any("error", err))
	}
}

func failureResult(err error) domain.OrderResult {
	res := domain.OrderResult{
		Success:      false,
		Status:       "failed",
		ErrorMessage: err.Error(),
	}
	if kind := domain.ErrorKind(err); kind != 0 {
		res.Raw = map[string]string{"error_kind": kind.String()}
	}
	return res
}
