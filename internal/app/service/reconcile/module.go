package reconcile

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/config"
	"github.com/fatflowers/easypay/pkg/metrics"
)

func newEngine(cfg *config.Config, store payment_record.Store, gw *easypay.Client, log *zap.SugaredLogger, m *metrics.BusinessMetrics) *Engine {
	return NewEngine(store, gw, log, m, Options{Timeout: cfg.Easypay.RequestTimeout})
}

// Module exposes the reconciliation engine via Fx.
var Module = fx.Options(
	fx.Provide(newEngine),
)
