package notification_handler

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app/service/eventbus"
	notificationlog "github.com/fatflowers/easypay/internal/app/service/notification_log"
	"github.com/fatflowers/easypay/internal/app/service/reconcile"
	"github.com/fatflowers/easypay/pkg/config"
	"github.com/fatflowers/easypay/pkg/metrics"
)

func newDispatcher(cfg *config.Config, engine *reconcile.Engine, bus *eventbus.Bus, notifLog *notificationlog.Service, m *metrics.BusinessMetrics, log *zap.SugaredLogger) *Dispatcher {
	return NewDispatcher(CodesFromConfig(cfg.Easypay.NotificationCodes), engine, bus, notifLog, m, log)
}

// Module exposes the notification dispatcher via Fx.
var Module = fx.Options(
	fx.Provide(newDispatcher),
)
