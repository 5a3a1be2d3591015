package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/easypay/internal/platform/easypay"
)

// PaymentStatusLog records every status change applied to a PaymentRecord.
// Use case: auditing money-relevant transitions.
type PaymentStatusLog struct {
	ID        string               `gorm:"column:id;type:uuid;primary_key"`
	EasypayID string               `gorm:"column:easypay_id;type:varchar(100);index;not null"`
	From      easypay.MethodStatus `gorm:"column:from_status;type:varchar(100)"`
	To        easypay.MethodStatus `gorm:"column:to_status;type:varchar(100);not null"`
	// Extra carries the trace id and notification kind that triggered the change.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (PaymentStatusLog) TableName() string {
	return "easypay_payment_status_log"
}
