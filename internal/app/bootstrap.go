// Package app wires the application together: configuration, storage, the
// market gateway and the voice pipeline.
package app

import (
	"context"
	"log/slog"
	"time"

	"voice_trader/internal/domain"
	"voice_trader/internal/execution"
	"voice_trader/internal/infra"
	"voice_trader/internal/infra/binance"
	"voice_trader/internal/infra/speech"
	"voice_trader/internal/infra/storage"
	"voice_trader/internal/listen"
	"voice_trader/internal/risk"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config   *infra.Config
	Storage  *storage.Storage
	Gateway  *binance.Client
	Ticker   *binance.TickerWorker
	Executor *execution.Executor
	Speaker  domain.Speaker
	Listener *listen.Controller
	Pipeline *Pipeline
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB,
// gateway, executor, listener).
func (b *Bootstrap) Initialize(configPath string) error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("bootstrapping",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.Bool("paper_trading", cfg.Trading.PaperTrading))

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("database initialized", slog.String("path", cfg.Storage.DBPath))

	// 4. Seed risk limits from config, without clobbering runtime changes.
	if err := b.seedRiskSettings(); err != nil {
		return err
	}

	// 5. Market gateway + live price stream
	b.Gateway = binance.NewClient(cfg)
	if len(cfg.API.Binance.Symbols) > 0 {
		b.Ticker = binance.NewTickerWorker(cfg)
		b.Gateway.AttachTickerWorker(b.Ticker)
	}

	// 6. Order pipeline
	riskMgr := risk.NewManager(store, store)
	b.Executor = execution.NewExecutor(
		b.Gateway, execution.NewPaperEngine(), riskMgr, store, cfg.Trading.PaperTrading)

	// 7. Speech feedback
	if cfg.Speech.TTSEnabled {
		b.Speaker = speech.NewLogSpeaker(cfg.Speech.Language)
	} else {
		b.Speaker = speech.NullSpeaker{}
	}

	// 8. Wake-word listener. Real microphone/model integrations plug in
	// here; the stand-ins keep the loop alive on headless hosts.
	b.Listener = listen.NewController(listenConfig(cfg),
		speech.SilentAudioSource{}, speech.NullTranscriber{}, b.Speaker)

	b.Pipeline = NewPipeline(cfg, b.Executor, b.Gateway, store, b.Speaker)
	return nil
}

// Start launches the background workers.
func (b *Bootstrap) Start(ctx context.Context) {
	if b.Ticker != nil {
		if err := b.Ticker.Connect(ctx); err != nil {
			slog.Error("failed to start ticker stream", slog.Any("error", err))
		}
	}
	b.Listener.Start(ctx)
}

// Stop shuts the background workers down and waits for them.
func (b *Bootstrap) Stop() {
	b.Listener.Stop()
	b.Listener.Wait()
	if b.Ticker != nil {
		b.Ticker.Disconnect()
	}
}

// seedRiskSettings copies configured limits into the settings store when
// the store has no value yet. Runtime edits in the store win afterwards.
func (b *Bootstrap) seedRiskSettings() error {
	seeds := map[string]string{
		"risk.max_notional_usd": b.Config.Risk.MaxNotionalUSD,
		"risk.max_leverage":     b.Config.Risk.MaxLeverage,
	}
	for key, value := range seeds {
		if value == "" {
			continue
		}
		current, err := b.Storage.GetSetting(key)
		if err != nil {
			return err
		}
		if current != "" {
			continue
		}
		if err := b.Storage.SetSetting(key, value); err != nil {
			return err
		}
	}
	return nil
}

func listenConfig(cfg *infra.Config) listen.Config {
	lc := listen.Config{
		WakeWord:     cfg.Listening.WakeWord,
		WakeVariants: cfg.Listening.WakeVariants,
		Sensitivity:  cfg.Listening.Sensitivity,
		SampleRate:   cfg.Listening.SampleRate,
	}
	if cfg.Listening.ActiveWindowSec > 0 {
		lc.ActiveDuration = secondsToDuration(float64(cfg.Listening.ActiveWindowSec))
	}
	if cfg.Listening.PassiveChunkSec > 0 {
		lc.PassiveChunk = secondsToDuration(cfg.Listening.PassiveChunkSec)
	}
	if cfg.Listening.ActiveChunkSec > 0 {
		lc.ActiveChunk = secondsToDuration(cfg.Listening.ActiveChunkSec)
	}
	return lc
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
