package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"voice_trader/internal/domain"
	"voice_trader/internal/infra"
)

// TickerWorker keeps a live price cache over the Binance futures websocket.
// It reconnects forever with a flat backoff; a broken stream degrades the
// client to REST lookups, it never fails an order.
type TickerWorker struct {
	wsURL   string
	symbols []string
	logger  *slog.Logger

	mu      sync.RWMutex
	prices  map[string]domain.Ticker
	conn    *websocket.Conn
	writeMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTickerWorker factory. symbols are canonical ("BTCUSDT").
func NewTickerWorker(cfg *infra.Config) *TickerWorker {
	wsURL := cfg.API.Binance.WSURL
	if wsURL == "" {
		wsURL = mainnetWSURL
		if cfg.API.Binance.Testnet {
			wsURL = testnetWSURL
		}
	}
	return &TickerWorker{
		wsURL:   wsURL,
		symbols: cfg.API.Binance.Symbols,
		logger:  slog.Default().With("module", "binance_ticker"),
		prices:  make(map[string]domain.Ticker),
	}
}

// Get returns the cached ticker for a canonical symbol.
func (w *TickerWorker) Get(symbol string) (domain.Ticker, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.prices[symbol]
	return t, ok
}

// Connect starts the background connection loop.
func (w *TickerWorker) Connect(ctx context.Context) error {
	if len(w.symbols) == 0 {
		return fmt.Errorf("no symbols to subscribe")
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *TickerWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			w.logger.Warn("ticker stream connection failed", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(baseDelay):
			}
		} else {
			w.readLoop(ctx)
		}
	}
}

func (w *TickerWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	go w.pingLoop(ctx)
	infra.GlobalMetrics.IncrementConnections()
	w.logger.Info("ticker stream connected", slog.Int("symbols", len(w.symbols)))
	return nil
}

func (w *TickerWorker) subscribe() error {
	params := make([]string, 0, len(w.symbols))
	for _, s := range w.symbols {
		params = append(params, strings.ToLower(s)+"@ticker")
	}
	req := wsSubscribeRequest{Method: "SUBSCRIBE", Params: params, ID: 1}
	b, _ := json.Marshal(req)
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *TickerWorker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.threadSafeWrite(websocket.PongMessage, nil); err != nil {
				return
			}
		}
	}
}

func (w *TickerWorker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *TickerWorker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *TickerWorker) handleMessage(msg []byte) {
	var ev wsTickerEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return
	}
	if ev.EventType != "24hrTicker" || ev.Symbol == "" {
		return
	}

	last, err := decimal.NewFromString(ev.LastPrice)
	if err != nil {
		return
	}

	t := domain.Ticker{
		Symbol: ev.Symbol,
		Last:   last,
		Bid:    parseDecimal(ev.BidPrice),
		Ask:    parseDecimal(ev.AskPrice),
	}

	w.mu.Lock()
	w.prices[ev.Symbol] = t
	w.mu.Unlock()
}

func (w *TickerWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
		infra.GlobalMetrics.DecrementConnections()
	}
}

// Disconnect stops the worker and waits for the loop to exit.
func (w *TickerWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
