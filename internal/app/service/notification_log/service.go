package notification_log

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/easypay/internal/models"
	"github.com/fatflowers/easypay/pkg/logctx"
	"github.com/fatflowers/easypay/pkg/tool"
)

// Service journals webhook deliveries. With a nil db every call is a no-op.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

func (s *Service) Enabled() bool { return s != nil && s.db != nil }

// Save asynchronously persists a payment notification log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, entry *models.PaymentNotificationLog) {
	if !s.Enabled() || entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.WithContext(ctx).Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to save notification log", "kind", entry.Kind, "status", entry.Status, "error", err.Error())
		}
	}()
}

// Wait blocks until pending writes finish.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func registerFlush(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			s.Wait()
			return nil
		},
	})
}

// Module exposes the notification log service via Fx.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerFlush),
)
