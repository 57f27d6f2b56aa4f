package service

import (
	"context"

	"github.com/rl1809/retail-store/internal/core/domain"
	"github.com/rl1809/retail-store/pkg/logger"
)

// LogAlarmSink reports integrity alarms as structured error events carrying
// a fixed alarm tag, so they can be routed to operators separately from
// ordinary failures.
type LogAlarmSink struct {
	log *logger.Logger
}

func NewLogAlarmSink(log *logger.Logger) *LogAlarmSink {
	return &LogAlarmSink{log: log}
}

func (s *LogAlarmSink) Raise(_ context.Context, alarm domain.IntegrityAlarm) {
	s.log.Error().
		Str("alarm", "stock_reconciliation_required").
		Str("order_id", alarm.OrderID).
		Int("product_id", alarm.ProductID).
		Int("quantity", alarm.Quantity).
		AnErr("cause", alarm.Cause).
		Msg("compensation exhausted, ledger is short by the reserved quantity")
}
