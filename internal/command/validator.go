package command

import (
	"fmt"

	"github.com/shopspring/decimal"

	"voice_trader/internal/domain"
)

// Static trade bounds in USD. Error messages render the literal bound, not
// the decimal's normalized form, so "1.0" stays "1.0".
const (
	minAmountStr = "1.0"
	maxAmountStr = "100000.0"
)

var (
	minAmount = decimal.RequireFromString(minAmountStr)
	maxAmount = decimal.RequireFromString(maxAmountStr)
)

// Supported canonical symbols.
var validSymbols = map[string]bool{
	"BTCUSDT": true, "ETHUSDT": true, "BNBUSDT": true, "SOLUSDT": true,
	"XRPUSDT": true, "DOGEUSDT": true, "ADAUSDT": true, "DOTUSDT": true,
	"AVAXUSDT": true, "LINKUSDT": true, "LTCUSDT": true, "MATICUSDT": true,
}

// Validate screens a parsed command against the static bounds. All detected
// violations are collected and returned together; valid means no errors.
func Validate(cmd *domain.ParsedCommand) (bool, []string) {
	if cmd == nil {
		return false, []string{"command could not be parsed"}
	}

	var errs []string

	if cmd.Action == domain.ActionBuy || cmd.Action == domain.ActionSell {
		if cmd.Symbol != "" && !validSymbols[cmd.Symbol] {
			errs = append(errs, fmt.Sprintf("invalid symbol: %s", cmd.Symbol))
		}

		switch {
		case cmd.Amount == nil:
			errs = append(errs, "amount not specified")
		case cmd.Amount.LessThan(minAmount):
			errs = append(errs, fmt.Sprintf("amount too low: %s USD (min: %s)", cmd.Amount, minAmountStr))
		case cmd.Amount.GreaterThan(maxAmount):
			errs = append(errs, fmt.Sprintf("amount too high: %s USD (max: %s)", cmd.Amount, maxAmountStr))
		}
	}

	if cmd.Confidence < 0.5 {
		errs = append(errs, "command is ambiguous, please try again")
	}

	return len(errs) == 0, errs
}
