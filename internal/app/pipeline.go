package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voice_trader/internal/command"
	"voice_trader/internal/domain"
	"voice_trader/internal/execution"
	"voice_trader/internal/infra"
)

// OrderHistory is the slice of storage the pipeline reads for status
// replies.
type OrderHistory interface {
	RecentOrders(limit int) ([]domain.OrderRecord, error)
}

// Pipeline turns a transcript into an executed action and a reply line.
// It is the glue between the listener, the parser/validator and the
// executor; both the voice path and the typed REPL path go through it.
type Pipeline struct {
	parser   *command.Parser
	executor *execution.Executor
	gateway  domain.MarketGateway
	history  OrderHistory
	speaker  domain.Speaker
	leverage int
	logger   *slog.Logger
}

func NewPipeline(cfg *infra.Config, executor *execution.Executor, gateway domain.MarketGateway, history OrderHistory, speaker domain.Speaker) *Pipeline {
	return &Pipeline{
		parser:   command.NewParser(cfg.Trading.DefaultSymbol),
		executor: executor,
		gateway:  gateway,
		history:  history,
		speaker:  speaker,
		leverage: cfg.Trading.DefaultLeverage,
		logger:   slog.Default().With("module", "pipeline"),
	}
}

// HandleTranscript parses, validates and executes one utterance and
// returns the reply shown to the user. It never returns an error; every
// failure becomes a reply line.
func (p *Pipeline) HandleTranscript(ctx context.Context, text string) string {
	cmd := p.parser.Parse(text)
	if cmd == nil {
		p.speaker.SpeakMessage("not_understood")
		return "command not recognized"
	}
	infra.GlobalMetrics.RecordCommandParsed()
	p.logger.Info("command parsed",
		slog.String("summary", cmd.Summary()),
		slog.Float64("confidence", cmd.Confidence))

	if ok, errs := command.Validate(cmd); !ok {
		p.speaker.SpeakMessage("error")
		return "invalid command: " + strings.Join(errs, "; ")
	}

	switch cmd.Action {
	case domain.ActionBuy, domain.ActionSell:
		return p.executeTrade(ctx, cmd)
	case domain.ActionStatus:
		return p.statusReply()
	case domain.ActionBalance:
		return p.balanceReply(ctx)
	case domain.ActionClose:
		// Position tracking lives on the venue; closing needs the position
		// size, which this build does not mirror locally.
		return "close is not automated yet: " + cmd.Summary()
	case domain.ActionCancel:
		p.speaker.SpeakMessage("cancelled")
		return "no working orders: market orders fill immediately"
	default:
		return "unsupported action: " + string(cmd.Action)
	}
}

func (p *Pipeline) executeTrade(ctx context.Context, cmd *domain.ParsedCommand) string {
	leverage := cmd.Leverage
	if leverage <= 0 {
		leverage = p.leverage
	}

	params := domain.OrderParams{
		Symbol:     cmd.Symbol,
		Side:       cmd.Side,
		Amount:     *cmd.Amount,
		AmountType: domain.AmountUSD,
		Leverage:   leverage,
		OrderType:  domain.OrderTypeMarket,
		Extra:      map[string]string{"voice_command": cmd.RawText},
	}

	res := p.executor.ExecuteMarketOrder(ctx, params)
	if !res.Success {
		infra.GlobalMetrics.RecordOrderFailed()
		p.speaker.SpeakMessage("order_failed")
		return "order failed: " + res.ErrorMessage
	}

	infra.GlobalMetrics.RecordOrderExecuted()
	p.speaker.SpeakMessage("order_success")
	return fmt.Sprintf("order %s: %s %s, filled %s @ %s",
		res.OrderID, cmd.Side, params.Symbol, res.FilledQty.String(), res.AvgPrice.String())
}

func (p *Pipeline) statusReply() string {
	orders, err := p.history.RecentOrders(5)
	if err != nil {
		return "status unavailable: " + err.Error()
	}
	if len(orders) == 0 {
		return "no orders yet"
	}

	var sb strings.Builder
	sb.WriteString("recent orders:")
	for _, o := range orders {
		mode := "real"
		if o.IsPaperTrade {
			mode = "paper"
		}
		fmt.Fprintf(&sb, "\n  %s %s %s %s @ %s [%s, %s]",
			o.ExchangeOrderID, o.Side, o.Symbol, o.FilledQuantity, o.AverageFillPrice, o.Status, mode)
	}
	return sb.String()
}

func (p *Pipeline) balanceReply(ctx context.Context) string {
	bal, err := p.gateway.GetBalance(ctx)
	if err != nil {
		return "balance unavailable: " + err.Error()
	}
	return fmt.Sprintf("balance: %s %s free, %s total",
		bal.Free.String(), bal.Currency, bal.Total.String())
}
