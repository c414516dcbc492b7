// Package risk enforces account-level order limits. Limits live in the
// settings store so they can be changed at runtime without a restart;
// an absent or unparsable setting means the limit is off.
package risk

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"voice_trader/internal/domain"
)

const (
	settingMaxNotional = "risk.max_notional_usd"
	settingMaxLeverage = "risk.max_leverage"
)

// Manager checks orders against configured limits before dispatch.
type Manager struct {
	settings domain.SettingsStore
	store    domain.OrderStore // audit sink, may be nil
	logger   *slog.Logger
}

func NewManager(settings domain.SettingsStore, store domain.OrderStore) *Manager {
	return &Manager{
		settings: settings,
		store:    store,
		logger:   slog.Default().With("module", "risk"),
	}
}

// Check validates the order against the notional and leverage limits, in
// that order. A nil return means the order may proceed. Rejections are
// written to the audit log on a best-effort basis; audit failures never
// change the outcome.
func (m *Manager) Check(rc domain.OrderRiskContext) error {
	if limit, ok := m.notionalLimit(); ok && rc.NotionalUSD.GreaterThan(limit) {
		err := domain.NewRiskLimitError(fmt.Sprintf(
			"order notional %s USD exceeds limit %s USD",
			rc.NotionalUSD.String(), limit.String()))
		m.audit(rc, err)
		return err
	}

	if limit, ok := m.leverageLimit(); ok && rc.Leverage > limit {
		err := domain.NewRiskLimitError(fmt.Sprintf(
			"leverage %d exceeds limit %d", rc.Leverage, limit))
		m.audit(rc, err)
		return err
	}

	return nil
}

func (m *Manager) notionalLimit() (decimal.Decimal, bool) {
	raw, err := m.settings.GetSetting(settingMaxNotional)
	if err != nil || raw == "" {
		return decimal.Zero, false
	}
	limit, err := decimal.NewFromString(raw)
	if err != nil {
		m.logger.Warn("unparsable risk setting ignored",
			slog.String("key", settingMaxNotional), slog.String("value", raw))
		return decimal.Zero, false
	}
	return limit, true
}

func (m *Manager) leverageLimit() (int, bool) {
	raw, err := m.settings.GetSetting(settingMaxLeverage)
	if err != nil || raw == "" {
		return 0, false
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		m.logger.Warn("unparsable risk setting ignored",
			slog.String("key", settingMaxLeverage), slog.String("value", raw))
		return 0, false
	}
	return limit, true
}

func (m *Manager) audit(rc domain.OrderRiskContext, cause error) {
	m.logger.Warn("order rejected by risk limit",
		slog.String("symbol", rc.Symbol),
		slog.String("side", rc.Side),
		slog.String("notional_usd", rc.NotionalUSD.String()),
		slog.Int("leverage", rc.Leverage),
		slog.Any("error", cause))

	if m.store == nil {
		return
	}
	if err := m.store.InsertSystemLog("warning", "risk limit rejected order", map[string]any{
		"symbol":       rc.Symbol,
		"side":         rc.Side,
		"notional_usd": rc.NotionalUSD.String(),
		"leverage":     rc.Leverage,
		"is_paper":     rc.IsPaper,
		"reason":       cause.Error(),
	}); err != nil {
		m.logger.Debug("risk audit write failed", slog.Any("error", err))
	}
}
