package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/easypay/internal/app/api/server"
	"github.com/fatflowers/easypay/internal/app/service/eventbus"
	notificationhandler "github.com/fatflowers/easypay/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/easypay/internal/app/service/notification_log"
	"github.com/fatflowers/easypay/internal/app/service/payment"
	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/app/service/reconcile"
	"github.com/fatflowers/easypay/internal/platform/db"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/config"
	"github.com/fatflowers/easypay/pkg/logger"
	"github.com/fatflowers/easypay/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	easypay.Module,
	payment_record.Module,
	reconcile.Module,
	eventbus.Module,
	notificationlog.Module,
	notificationhandler.Module,
	payment.Module,
	server.Module,
)
