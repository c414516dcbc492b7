package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MarketGateway is the exchange capability the executor depends on.
// Implementations wrap a real venue (REST + websocket); all calls may fail
// on network or auth errors and the pipeline converts those into results.
type MarketGateway interface {
	// GetTicker returns current market data for a canonical symbol.
	GetTicker(ctx context.Context, symbol string) (Ticker, error)

	// ValidateSymbol reports whether the venue trades the symbol.
	ValidateSymbol(ctx context.Context, symbol string) (bool, error)

	// NormalizeSymbol maps a loosely written symbol ("btc/usdt", "BTC-USDT")
	// to the venue's canonical form. Empty string when unknown.
	NormalizeSymbol(ctx context.Context, symbol string) (string, error)

	// GetBalance returns the quote-currency account balance.
	GetBalance(ctx context.Context) (AccountBalance, error)

	// CreateOrder submits an order and returns the venue's view of it.
	CreateOrder(ctx context.Context, params OrderParams, qty decimal.Decimal) (ExchangeOrder, error)
}

// Ticker is the slice of venue market data the pipeline needs.
type Ticker struct {
	Symbol string
	Last   decimal.Decimal
	Bid    decimal.Decimal
	Ask    decimal.Decimal
}

// AccountBalance mirrors the venue's free/total margin balance.
type AccountBalance struct {
	Currency string
	Free     decimal.Decimal
	Total    decimal.Decimal
}

// ExchangeOrder is the normalized record a venue (or the paper engine)
// returns for a placed order.
type ExchangeOrder struct {
	ID        string
	Symbol    string
	Side      string
	Type      string
	Status    string
	Amount    decimal.Decimal
	Filled    decimal.Decimal
	Price     decimal.Decimal
	Average   decimal.Decimal
	Cost      decimal.Decimal
	Timestamp int64 // unix milliseconds
}

// SettingsStore exposes user settings under dot-delimited keys
// ("risk.max_notional_usd"). Read-only from the core's perspective.
// Absent keys return an empty value, not an error.
type SettingsStore interface {
	GetSetting(key string) (string, error)
}

// OrderStore persists executed orders and system log lines. Persistence
// failures never overturn a trade result; callers log and move on.
type OrderStore interface {
	InsertOrder(rec *OrderRecord) (uint, error)

	// InsertSystemLog appends an audit line. It must silently no-op when
	// the log table is missing and fail on any other storage error.
	InsertSystemLog(level, message string, context map[string]any) error
}

// Transcriber is the opaque speech-to-text capability. Silent or empty
// audio yields an empty string, not an error. Blocking and potentially slow.
type Transcriber interface {
	Transcribe(samples []float32, sampleRate int) (string, error)
}

// AudioSource captures mono audio. Blocking for roughly the requested
// duration; cancellation is honored only between captures.
type AudioSource interface {
	Record(ctx context.Context, seconds float64, sampleRate int) ([]float32, error)
}

// Speaker is the optional text-to-speech capability. Purely advisory: it
// must never block or fail the pipeline.
type Speaker interface {
	Speak(text string)
	SpeakMessage(key string)
}
