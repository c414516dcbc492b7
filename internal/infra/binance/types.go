// Package binance implements the market gateway against Binance USDT-M
// futures: signed REST for account and orders, websocket for live prices.
package binance

import "time"

const (
	mainnetWSURL   = "wss://fstream.binance.com/ws"
	mainnetRestURL = "https://fapi.binance.com"
	testnetWSURL   = "wss://stream.binancefuture.com/ws"
	testnetRestURL = "https://testnet.binancefuture.com"

	baseDelay    = 1 * time.Second
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
)

// wsSubscribeRequest Structure
type wsSubscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// wsTickerEvent is the 24hr ticker stream payload (fields we read).
type wsTickerEvent struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
	BidPrice  string `json:"b"`
	AskPrice  string `json:"a"`
}

// priceTickerResponse - GET /fapi/v1/ticker/price
type priceTickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// exchangeInfoResponse - GET /fapi/v1/exchangeInfo (symbol list only)
type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol string `json:"symbol"`
		Status string `json:"status"`
	} `json:"symbols"`
}

// balanceEntry - GET /fapi/v2/balance
type balanceEntry struct {
	Asset            string `json:"asset"`
	Balance          string `json:"balance"`
	AvailableBalance string `json:"availableBalance"`
}

// orderResponse - POST /fapi/v1/order
type orderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	AvgPrice      string `json:"avgPrice"`
	Price         string `json:"price"`
	CumQuote      string `json:"cumQuote"`
	UpdateTime    int64  `json:"updateTime"`
}

// apiError is Binance's error envelope on non-2xx responses.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
