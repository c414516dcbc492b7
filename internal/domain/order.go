package domain

import (
	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"

	// AmountUSD: Amount is a notional in USDT.
	// AmountQty: Amount is a coin quantity (BTC, ETH, ...).
	AmountUSD = "usd"
	AmountQty = "qty"
)

// OrderParams is the executor-facing order specification. The UI layer may
// construct it directly, bypassing the command parser.
type OrderParams struct {
	Symbol        string
	Side          string // SideBuy / SideSell
	Amount        decimal.Decimal
	AmountType    string // AmountUSD / AmountQty
	Leverage      int
	OrderType     string           // OrderTypeMarket / OrderTypeLimit
	Price         *decimal.Decimal // required iff OrderTypeLimit
	ReduceOnly    bool
	ClientOrderID string
	Extra         map[string]string // free-form metadata, e.g. originating voice command
}

// OrderResult is the outcome of an execution attempt. The executor always
// returns one; no expected failure category escapes as an error.
type OrderResult struct {
	Success      bool
	OrderID      string
	Status       string
	FilledQty    decimal.Decimal
	AvgPrice     decimal.Decimal
	ErrorMessage string            // set iff !Success
	Raw          map[string]string // opaque venue payload, kept for audit
}

// OrderRiskContext is the ephemeral input of a risk check. Built per order
// and discarded, never persisted.
type OrderRiskContext struct {
	Symbol      string
	Side        string
	NotionalUSD decimal.Decimal
	Leverage    int
	IsPaper     bool
}
