package payment_record

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/fatflowers/easypay/internal/models"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/tool"
	"github.com/fatflowers/easypay/pkg/types"
)

var (
	ErrRecordNotFound = errors.New("payment record not found")
	// ErrStaleRecord means the record was saved by someone else since it was read.
	ErrStaleRecord       = errors.New("payment record is stale")
	ErrStoreUnavailable  = errors.New("payment record store unavailable")
	ErrDuplicatedEasypay = errors.New("payment record already exists for easypay id")
)

// Store persists PaymentRecords. Implementations must treat EasypayID as a
// unique, immutable key and must never delete records.
type Store interface {
	// FindByExternalID returns ErrRecordNotFound when no record matches.
	FindByExternalID(ctx context.Context, easypayID string) (*models.PaymentRecord, error)
	Create(ctx context.Context, merchantKey string, amount decimal.Decimal, res *easypay.PaymentResponse, principal *types.Principal) (*models.PaymentRecord, error)
	// Save writes rec if its Version still matches the stored one, and bumps it.
	// Otherwise it returns ErrStaleRecord.
	Save(ctx context.Context, rec *models.PaymentRecord) error
}

// NewRecord maps a creation response onto a fresh record.
func NewRecord(merchantKey string, amount decimal.Decimal, res *easypay.PaymentResponse, principal *types.Principal) (*models.PaymentRecord, error) {
	if res == nil || res.ID == "" {
		return nil, fmt.Errorf("payment response has no id")
	}
	rec := &models.PaymentRecord{
		ID:              tool.GenerateUUIDV7(),
		EasypayID:       res.ID,
		MerchantKey:     merchantKey,
		Amount:          decimal.NewNullDecimal(amount.Round(2)),
		Currency:        res.Currency,
		Status:          res.MethodStatus(),
		MethodType:      res.MethodType(),
		CustomerID:      res.CustomerID(),
		Version:         1,
		GatewayResponse: datatypes.NewJSONType(res),
	}
	if principal != nil && principal.ID != "" {
		rec.UserID = lo.ToPtr(principal.ID)
	}
	return rec, nil
}
