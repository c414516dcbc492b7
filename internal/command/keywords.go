package command

import (
	"regexp"

	"voice_trader/internal/domain"
)

// Action keyword sets (Turkish + English). Checked in a fixed priority
// order so overlapping vocabulary resolves deterministically:
// close > cancel > buy > sell > status > balance.
var actionKeywords = []struct {
	action   domain.Action
	keywords []string
}{
	{domain.ActionClose, []string{
		"kapat", "pozisyon kapat", "close", "çık", "çıkış",
		"pozisyonu kapat", "kapatalım", "kapat pozisyonu",
	}},
	{domain.ActionCancel, []string{
		"iptal", "iptal et", "cancel", "vazgeç", "sil",
		"emri iptal", "emri iptal et", "order iptal",
	}},
	{domain.ActionBuy, []string{
		"al", "satın al", "satınal", "buy", "long", "uzun",
		"aç", "pozisyon aç", "gir", "alım", "alalım",
	}},
	{domain.ActionSell, []string{
		"sat", "sell", "short", "kısa", "açığa sat",
		"satış", "satalım",
	}},
	{domain.ActionStatus, []string{
		"durum", "status", "pozisyon", "pozisyonlar",
		"açık pozisyon", "ne var", "göster",
	}},
	{domain.ActionBalance, []string{
		"bakiye", "balance", "para", "hesap", "cüzdan",
		"ne kadar", "sermaye",
	}},
}

// Crypto name/ticker aliases, in lookup order. Earlier entries win when
// several aliases appear in one utterance.
var cryptoAliases = []struct {
	alias  string
	symbol string
}{
	{"bitcoin", "BTCUSDT"},
	{"btc", "BTCUSDT"},
	{"bitkoyn", "BTCUSDT"},
	{"bit", "BTCUSDT"},

	{"ethereum", "ETHUSDT"},
	{"eth", "ETHUSDT"},
	{"eter", "ETHUSDT"},
	{"eterium", "ETHUSDT"},

	{"bnb", "BNBUSDT"},
	{"binance", "BNBUSDT"},

	{"solana", "SOLUSDT"},
	{"sol", "SOLUSDT"},

	{"xrp", "XRPUSDT"},
	{"ripple", "XRPUSDT"},

	{"doge", "DOGEUSDT"},
	{"dogecoin", "DOGEUSDT"},
	{"doj", "DOGEUSDT"},

	{"ada", "ADAUSDT"},
	{"cardano", "ADAUSDT"},

	{"dot", "DOTUSDT"},
	{"polkadot", "DOTUSDT"},

	{"avax", "AVAXUSDT"},
	{"avalanche", "AVAXUSDT"},

	{"link", "LINKUSDT"},
	{"chainlink", "LINKUSDT"},

	{"ltc", "LTCUSDT"},
	{"litecoin", "LTCUSDT"},

	{"matic", "MATICUSDT"},
	{"polygon", "MATICUSDT"},
}

// Single-word Turkish numbers. Compound numerals ("yüz elli" = 150) are
// deliberately not composed; only isolated tokens are converted.
var numberWords = map[string]string{
	"bir": "1", "iki": "2", "üç": "3", "dört": "4", "beş": "5",
	"altı": "6", "yedi": "7", "sekiz": "8", "dokuz": "9", "on": "10",
	"yirmi": "20", "otuz": "30", "kırk": "40", "elli": "50",
	"altmış": "60", "yetmiş": "70", "seksen": "80", "doksan": "90",
	"yüz": "100", "bin": "1000",
}

// Amount patterns, tried in order; the first match wins.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:dolar|dollar|\$|usd|usdt)`),
	regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:tl|lira|türk lirası)`),
	regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:euro|€|eur)`),
	regexp.MustCompile(`(\d+)\s*(?:k|bin)`),
	regexp.MustCompile(`(\d+(?:[.,]\d+)?)`),
}

var aliasPatterns = buildAliasPatterns()

func buildAliasPatterns() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(cryptoAliases))
	for i, entry := range cryptoAliases {
		res[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(entry.alias) + `\b`)
	}
	return res
}
