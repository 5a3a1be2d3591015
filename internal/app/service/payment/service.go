package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/models"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/config"
	"github.com/fatflowers/easypay/pkg/logctx"
	"github.com/fatflowers/easypay/pkg/tool"
	"github.com/fatflowers/easypay/pkg/types"
)

// CreatePaymentRequest is a single payment as requested by a caller. Empty
// customer fields are filled from Principal when one is given.
type CreatePaymentRequest struct {
	Value          float64             `json:"value" binding:"required"`
	Method         easypay.MethodType  `json:"method" binding:"required"`
	Type           easypay.PaymentType `json:"type,omitempty"`
	Currency       easypay.Currency    `json:"currency,omitempty"`
	ExpirationTime string              `json:"expiration_time,omitempty"`
	Capture        *easypay.Capture    `json:"capture,omitempty"`
	Customer       *easypay.Customer   `json:"customer,omitempty"`
	MerchantKey    string              `json:"merchant_key,omitempty"`
	Principal      *types.Principal    `json:"principal,omitempty"`
}

type Service struct {
	cfg     config.EasypayConfig
	gateway easypay.Gateway
	store   payment_record.Store
	log     *zap.SugaredLogger
}

// NewService accepts a nil store; payments are then created without a local record.
func NewService(cfg *config.Config, gateway easypay.Gateway, store payment_record.Store, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg.Easypay, gateway: gateway, store: store, log: log}
}

// CreatePayment asks the gateway for a new single payment and records it.
// The gateway call is not retried. A failure to persist is logged only,
// since the remote payment already exists; the record is nil in that case.
func (s *Service) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*easypay.PaymentResponse, *models.PaymentRecord, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("%w: create payment request is nil", easypay.ErrInvalidArgument)
	}
	log := logctx.FromCtx(ctx, s.log)

	gwReq := s.buildGatewayRequest(req)
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	log.Debugw("easypay_create_payment", "merchant_key", gwReq.Key, "method", gwReq.Method, "value", gwReq.Value)
	res, err := s.gateway.CreatePayment(ctx, gwReq)
	if err != nil {
		log.Errorw("easypay_create_payment_failed", "merchant_key", gwReq.Key, "error", err.Error())
		return nil, nil, err
	}
	if res.Currency == "" {
		res.Currency = gwReq.Currency
	}
	if res.Key == "" {
		res.Key = gwReq.Key
	}

	if s.store == nil {
		return res, nil, nil
	}
	rec, err := s.store.Create(context.WithoutCancel(ctx), gwReq.Key, decimal.NewFromFloat(gwReq.Value), res, req.Principal)
	if err != nil {
		log.Errorw("failed to save payment record", "easypay_id", res.ID, "error", err.Error())
		return res, nil, nil
	}
	log.Infow("payment_created", "easypay_id", res.ID, "record_id", rec.ID, "status", rec.Status)
	return res, rec, nil
}

func (s *Service) GetPayment(ctx context.Context, id string) (*easypay.PaymentResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.gateway.GetPayment(ctx, id)
}

func (s *Service) DeletePayment(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.gateway.DeletePayment(ctx, id)
}

// ListPayments pages through local records. It needs a store that supports
// scanning, which the postgres store does.
func (s *Service) ListPayments(ctx context.Context, req *payment_record.ScanRequest) (*payment_record.ScanResult, error) {
	scanner, ok := s.store.(payment_record.Scanner)
	if !ok {
		return nil, fmt.Errorf("%w: payment persistence is disabled", payment_record.ErrStoreUnavailable)
	}
	return scanner.Scan(ctx, req)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

// buildGatewayRequest applies merchant key and customer defaults. Validation
// is left to the gateway client.
func (s *Service) buildGatewayRequest(req *CreatePaymentRequest) *easypay.PaymentRequest {
	if req == nil {
		return nil
	}
	out := &easypay.PaymentRequest{
		Type:           req.Type,
		Capture:        req.Capture,
		ExpirationTime: req.ExpirationTime,
		Currency:       req.Currency,
		Key:            s.merchantKey(req.MerchantKey),
		Value:          req.Value,
		Method:         req.Method,
	}

	var customer easypay.Customer
	if req.Customer != nil {
		customer = *req.Customer
	}
	if p := req.Principal; p != nil {
		if customer.Name == "" {
			customer.Name = p.FullName
		}
		if customer.Email == "" {
			customer.Email = p.Email
		}
		if customer.Key == "" {
			customer.Key = p.ID
		}
	}
	if customer.Phone != "" && customer.PhoneIndicative == "" {
		customer.PhoneIndicative = easypay.DefaultPhoneIndicative
	}
	if customer != (easypay.Customer{}) {
		out.Customer = &customer
	}
	return out
}

func (s *Service) merchantKey(given string) string {
	switch {
	case given != "":
		return given
	case s.cfg.GenerateMerchantKey:
		return tool.GenerateUUIDV7()
	default:
		return s.cfg.MerchantKey
	}
}
