package payment_record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/easypay/internal/models"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/logctx"
	"github.com/fatflowers/easypay/pkg/tool"
	"github.com/fatflowers/easypay/pkg/types"
)

// GormStore keeps payment records in postgres.
type GormStore struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewGormStore(db *gorm.DB, log *zap.SugaredLogger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) FindByExternalID(ctx context.Context, easypayID string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := s.db.WithContext(ctx).Where("easypay_id = ?", easypayID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, easypayID)
		}
		return nil, fmt.Errorf("%w: find %s: %v", ErrStoreUnavailable, easypayID, err)
	}
	return &rec, nil
}

func (s *GormStore) Create(ctx context.Context, merchantKey string, amount decimal.Decimal, res *easypay.PaymentResponse, principal *types.Principal) (*models.PaymentRecord, error) {
	rec, err := NewRecord(merchantKey, amount, res, principal)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatedEasypay, rec.EasypayID)
		}
		return nil, fmt.Errorf("%w: create %s: %v", ErrStoreUnavailable, rec.EasypayID, err)
	}
	logctx.FromCtx(ctx, s.log).Infow("payment_record_created", "easypay_id", rec.EasypayID, "status", rec.Status)
	return rec, nil
}

// Save locks the row, checks the version and writes the mutable fields.
// A status change is journalled in the same transaction.
func (s *GormStore) Save(ctx context.Context, rec *models.PaymentRecord) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("cannot save a record without id")
	}
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.PaymentRecord
		err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Select("id", "status", "version").
			Where("id = ?", rec.ID).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrRecordNotFound, rec.EasypayID)
			}
			return err
		}
		if current.Version != rec.Version {
			return fmt.Errorf("%w: %s has version %d, caller holds %d", ErrStaleRecord, rec.EasypayID, current.Version, rec.Version)
		}

		if err := tx.Model(&models.PaymentRecord{}).
			Where("id = ? AND version = ?", rec.ID, rec.Version).
			Updates(map[string]any{
				"status":      rec.Status,
				"customer_id": rec.CustomerID,
				"version":     rec.Version + 1,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		if current.Status != rec.Status {
			entry := &models.PaymentStatusLog{
				ID:        tool.GenerateUUIDV7(),
				EasypayID: rec.EasypayID,
				From:      current.Status,
				To:        rec.Status,
				Extra:     statusLogExtra(ctx),
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleRecord) || errors.Is(err, ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("%w: save %s: %v", ErrStoreUnavailable, rec.EasypayID, err)
	}
	rec.Version++
	rec.UpdatedAt = now
	return nil
}

func statusLogExtra(ctx context.Context) datatypes.JSONMap {
	extra := datatypes.JSONMap{}
	if tid := logctx.TraceID(ctx); tid != "" {
		extra["trace_id"] = tid
	}
	if kind, ok := ctx.Value(NotificationKindKey).(easypay.NotificationKind); ok {
		extra["notification_kind"] = string(kind)
	}
	return extra
}

type ctxKey string

// NotificationKindKey tags a context with the webhook kind that triggered a save.
const NotificationKindKey ctxKey = "notification_kind"
