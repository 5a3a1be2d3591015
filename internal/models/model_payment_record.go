package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/fatflowers/easypay/internal/platform/easypay"
)

// PaymentRecord is the local copy of a single Easypay payment.
// EasypayID is set at creation and never changes; Status is only written by
// notification reconciliation.
type PaymentRecord struct {
	ID          string               `gorm:"column:id;type:uuid;primary_key" json:"id"`
	EasypayID   string               `gorm:"column:easypay_id;type:varchar(100);not null;uniqueIndex" json:"easypay_id"`
	MerchantKey string               `gorm:"column:merchant_key;type:varchar(100)" json:"merchant_key"`
	Amount      decimal.NullDecimal  `gorm:"column:amount;type:numeric(10,2)" json:"amount"`
	Currency    easypay.Currency     `gorm:"column:currency;type:varchar(8)" json:"currency"`
	Status      easypay.MethodStatus `gorm:"column:status;type:varchar(100);not null" json:"status"`
	MethodType  easypay.MethodType   `gorm:"column:method_type;type:varchar(10)" json:"method_type"`
	CustomerID  string               `gorm:"column:customer_id;type:varchar(100)" json:"customer_id"`
	// UserID is the owning principal, if the payment was made on behalf of one.
	UserID *string `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	// Version is bumped on every save and guards against lost updates.
	Version         int64                                        `gorm:"column:version;not null;default:1" json:"version"`
	GatewayResponse datatypes.JSONType[*easypay.PaymentResponse] `gorm:"column:gateway_response;type:jsonb;default:'null'" json:"gateway_response"`
	CreatedAt       time.Time                                    `json:"created_at"`
	UpdatedAt       time.Time                                    `json:"updated_at"`
}

func (PaymentRecord) TableName() string {
	return "easypay_payment"
}

func (r *PaymentRecord) String() string {
	if r == nil {
		return ""
	}
	return r.EasypayID
}
