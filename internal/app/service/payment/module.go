package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/config"
)

func newService(cfg *config.Config, gw *easypay.Client, store payment_record.Store, log *zap.SugaredLogger) *Service {
	return NewService(cfg, gw, store, log)
}

// Module exposes the payment service via Fx.
var Module = fx.Options(
	fx.Provide(newService),
)
