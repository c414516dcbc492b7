package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Action is the interpreted intent of a voice or typed command.
type Action string

const (
	ActionBuy     Action = "buy"
	ActionSell    Action = "sell"
	ActionClose   Action = "close"
	ActionCancel  Action = "cancel"
	ActionStatus  Action = "status"
	ActionBalance Action = "balance"
)

// ParsedCommand is the structured result of interpreting free text.
// Constructed once per parse call and immutable afterwards; it is consumed
// by the validator / executor and then discarded.
type ParsedCommand struct {
	Action    Action
	Side      string           // SideBuy / SideSell, set only for buy/sell
	Symbol    string           // canonical pair ("BTCUSDT"); empty means "not found" / "all" for close
	Amount    *decimal.Decimal // quote-currency (USD) amount; nil when not spoken
	Leverage  int
	OrderType string           // OrderTypeMarket / OrderTypeLimit
	Price     *decimal.Decimal // for limit orders
	RawText   string           // normalized input, kept for audit logs

	// Confidence starts at 1.0 and is multiplied down by fixed penalties
	// when required fields had to be inferred (0.8 missing symbol,
	// 0.5 missing amount). Informational only, gated by the validator.
	Confidence float64
}

// Summary renders the command in a short human-readable form for the UI
// layer and TTS feedback.
func (c *ParsedCommand) Summary() string {
	switch c.Action {
	case ActionBuy:
		return fmt.Sprintf("BUY %s %s USD", c.Symbol, amountOrUnknown(c.Amount))
	case ActionSell:
		return fmt.Sprintf("SELL %s %s USD", c.Symbol, amountOrUnknown(c.Amount))
	case ActionClose:
		if c.Symbol == "" {
			return "CLOSE all positions"
		}
		return "CLOSE " + c.Symbol
	case ActionCancel:
		return "CANCEL order"
	case ActionStatus:
		return "STATUS"
	case ActionBalance:
		return "BALANCE"
	default:
		return fmt.Sprintf("unknown command: %s", c.Action)
	}
}

func amountOrUnknown(d *decimal.Decimal) string {
	if d == nil {
		return "?"
	}
	return d.String()
}
