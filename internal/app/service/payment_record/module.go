package payment_record

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/easypay/pkg/config"
)

// NewStore returns nil when persistence is disabled in configuration.
func NewStore(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) Store {
	switch cfg.Easypay.PersistStore {
	case config.PersistStorePostgres:
		if db == nil {
			return nil
		}
		return NewGormStore(db, log)
	default:
		log.Infow("payment record persistence disabled")
		return nil
	}
}

// Module exposes the payment record store via Fx.
var Module = fx.Options(
	fx.Provide(NewStore),
)
