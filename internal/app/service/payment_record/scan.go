package payment_record

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/easypay/internal/models"
	"github.com/fatflowers/easypay/pkg/types"
)

const (
	defaultScanSize = 10
	maxScanSize     = 200
)

var ErrInvalidScan = errors.New("invalid scan request")

// ScanFields are the columns admin listings may filter and sort on.
var ScanFields = []string{
	"easypay_id", "merchant_key", "amount", "currency", "status",
	"method_type", "customer_id", "user_id", "created_at", "updated_at",
}

type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResult struct {
	Items []*models.PaymentRecord `json:"items"`
	Total int64                   `json:"total"`
}

// Scanner lists records for back-office use.
type Scanner interface {
	Scan(ctx context.Context, req *ScanRequest) (*ScanResult, error)
}

// Normalize validates req and fills paging defaults. Newest records come first
// unless another order is requested.
func (req *ScanRequest) Normalize() error {
	for _, f := range req.Filters {
		if f == nil {
			return fmt.Errorf("%w: nil filter", ErrInvalidScan)
		}
		if err := f.Validate(ScanFields); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidScan, err)
		}
	}
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	if !lo.Contains(ScanFields, req.SortBy) {
		return fmt.Errorf("%w: cannot sort by %q", ErrInvalidScan, req.SortBy)
	}
	if req.SortOrder != "asc" {
		req.SortOrder = "desc"
	}
	if req.Size <= 0 {
		req.Size = defaultScanSize
	}
	req.Size = min(req.Size, maxScanSize)
	req.From = max(req.From, 0)
	return nil
}

func (s *GormStore) Scan(ctx context.Context, req *ScanRequest) (*ScanResult, error) {
	if req == nil {
		req = &ScanRequest{}
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	filtered := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.PaymentRecord{})
		if len(req.Filters) > 0 {
			tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: count: %v", ErrStoreUnavailable, err)
	}

	var rows []*models.PaymentRecord
	err := filtered().Order(clause.OrderBy{Columns: []clause.OrderByColumn{{
		Column: clause.Column{Name: req.SortBy},
		Desc:   req.SortOrder == "desc",
	}}}).Limit(req.Size).Offset(req.From).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreUnavailable, err)
	}
	return &ScanResult{Items: rows, Total: total}, nil
}
