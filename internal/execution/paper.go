// Package execution turns validated order parameters into persisted
// results, either against a real venue or the built-in paper simulator.
package execution

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"voice_trader/internal/domain"
)

// PaperEngine is a best-case fill simulator: every order fills instantly
// and completely at the supplied price. No partial fills, no rejections.
//
// The order counter is not synchronized; the executor serializes calls, so
// standalone use from multiple goroutines needs external locking.
type PaperEngine struct {
	counter int
}

func NewPaperEngine() *PaperEngine {
	return &PaperEngine{}
}

// CreateOrder synthesizes a closed order with id "paper-1", "paper-2", ...
func (e *PaperEngine) CreateOrder(params domain.OrderParams, qty, price decimal.Decimal) domain.ExchangeOrder {
	e.counter++
	return domain.ExchangeOrder{
		ID:        fmt.Sprintf("paper-%d", e.counter),
		Symbol:    params.Symbol,
		Side:      params.Side,
		Type:      params.OrderType,
		Status:    "closed",
		Amount:    qty,
		Filled:    qty,
		Price:     price,
		Average:   price,
		Cost:      qty.Mul(price),
		Timestamp: time.Now().UnixMilli(),
	}
}
