// Package command turns free-text utterances (Turkish/English mixed
// vocabulary) into structured trading intents and screens them against
// static bounds. Both the parser and the validator are pure: no I/O, no
// shared state, safe for concurrent use.
package command

import (
	"strings"

	"github.com/shopspring/decimal"

	"voice_trader/internal/domain"
)

var thousand = decimal.NewFromInt(1000)

// Parser converts utterances like "Al BTC 100 dolar" into a
// domain.ParsedCommand. Unrecognized input yields nil, never an error.
type Parser struct {
	defaultSymbol string
}

// NewParser creates a parser. defaultSymbol is substituted when a buy/sell
// utterance names no coin (with a confidence penalty).
func NewParser(defaultSymbol string) *Parser {
	return &Parser{defaultSymbol: defaultSymbol}
}

// Parse interprets text and returns the structured command, or nil when no
// action keyword is recognized.
func (p *Parser) Parse(text string) *domain.ParsedCommand {
	text = normalizeText(text)
	if text == "" {
		return nil
	}

	action, ok := detectAction(text)
	if !ok {
		return nil
	}

	cmd := &domain.ParsedCommand{
		Action:     action,
		OrderType:  domain.OrderTypeMarket,
		RawText:    text,
		Confidence: 1.0,
	}

	switch action {
	case domain.ActionBuy, domain.ActionSell:
		if action == domain.ActionBuy {
			cmd.Side = domain.SideBuy
		} else {
			cmd.Side = domain.SideSell
		}
		cmd.Symbol = extractSymbol(text)
		cmd.Amount = extractAmount(text)

		if cmd.Symbol == "" {
			cmd.Symbol = p.defaultSymbol
			cmd.Confidence *= 0.8
		}
		if cmd.Amount == nil {
			cmd.Confidence *= 0.5
		}

	case domain.ActionClose:
		// Absent symbol means "close all positions".
		cmd.Symbol = extractSymbol(text)
	}

	return cmd
}

// normalizeText lowercases, folds curly quote variants to ASCII and
// collapses whitespace runs. Turkish letters (ı, ğ, ü, ş, ö, ç) are kept
// as-is; only the wake-word matcher simplifies them.
func normalizeText(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))

	replacer := strings.NewReplacer(
		"‘", "'",
		"’", "'",
		"“", `"`,
		"”", `"`,
	)
	text = replacer.Replace(text)

	return strings.Join(strings.Fields(text), " ")
}

func detectAction(text string) (domain.Action, bool) {
	for _, set := range actionKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(text, kw) {
				return set.action, true
			}
		}
	}
	return "", false
}

func extractSymbol(text string) string {
	for i, entry := range cryptoAliases {
		if aliasPatterns[i].MatchString(text) {
			return entry.symbol
		}
	}
	return ""
}

func extractAmount(text string) *decimal.Decimal {
	converted := convertWordNumbers(text)

	for _, pattern := range amountPatterns {
		m := pattern.FindStringSubmatch(converted)
		if m == nil {
			continue
		}
		amount, err := parseNumber(m[1])
		if err != nil {
			continue
		}

		// "5k" / "5 bin" shorthand: a marker anywhere in the raw
		// utterance scales the number, but never one that is already in
		// the thousands. The marker check is coarse: a "k" inside a coin
		// name ("link") triggers it too.
		if hasThousandsMarker(text) && amount.LessThan(thousand) {
			amount = amount.Mul(thousand)
		}

		return &amount
	}
	return nil
}

func hasThousandsMarker(text string) bool {
	return strings.Contains(text, "k") || strings.Contains(text, "bin")
}

func parseNumber(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// convertWordNumbers replaces isolated Turkish number words with digits,
// token by token. "yüz elli" becomes "100 50", not "150" - compound
// numerals are a known gap.
func convertWordNumbers(text string) string {
	tokens := strings.Fields(text)
	for i, tok := range tokens {
		if digits, ok := numberWords[tok]; ok {
			tokens[i] = digits
		}
	}
	return strings.Join(tokens, " ")
}
