package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"voice_trader/internal/app"
	"voice_trader/internal/infra"
	"voice_trader/internal/listen"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(configPath); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.Start(ctx)
	defer bootstrap.Stop()

	// Typed commands share the voice pipeline; one line is one utterance.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		close(lines)
	}()

	mode := bootstrap.Executor.PaperTrading()
	fmt.Printf("voice trader ready (paper trading: %v). Type a command or Ctrl+C to exit.\n> ", mode)

	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			return

		case line, ok := <-lines:
			if !ok {
				slog.Info("stdin closed, shutting down")
				return
			}
			if line != "" {
				fmt.Println(bootstrap.Pipeline.HandleTranscript(ctx, line))
			}
			fmt.Print("> ")

		case ev := <-bootstrap.Listener.Events():
			handleListenerEvent(ctx, bootstrap, ev)
		}
	}
}

func handleListenerEvent(ctx context.Context, bootstrap *app.Bootstrap, ev listen.Event) {
	switch ev.Type {
	case listen.EventModeChanged:
		slog.Debug("listener mode changed", slog.String("mode", string(ev.Mode)))
	case listen.EventWakeDetected:
		infra.GlobalMetrics.RecordWakeDetection()
	case listen.EventCommandReady:
		fmt.Printf("\n[voice] %s\n", ev.Text)
		fmt.Println(bootstrap.Pipeline.HandleTranscript(ctx, ev.Text))
		fmt.Print("> ")
	case listen.EventError:
		infra.GlobalMetrics.RecordError()
		slog.Warn("listener error", slog.Any("error", ev.Err))
	}
}
