package notification_handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/easypay/internal/app/service/eventbus"
	notificationlog "github.com/fatflowers/easypay/internal/app/service/notification_log"
	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/app/service/reconcile"
	"github.com/fatflowers/easypay/internal/models"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/config"
	"github.com/fatflowers/easypay/pkg/logctx"
	"github.com/fatflowers/easypay/pkg/metrics"
)

var (
	// ErrPermissionDenied means the verification code did not match. The
	// delivery must not be retried as is.
	ErrPermissionDenied = errors.New("notification verification code mismatch")
	ErrNotImplemented   = errors.New("notification kind not implemented")
)

// metric outcomes
const (
	outcomeForbidden      = "forbidden"
	outcomeMalformed      = "malformed"
	outcomeNotImplemented = "not_implemented"
	outcomeHandled        = "handled"
	outcomeHandleFailed   = "handle_failed"
)

type Reconciler interface {
	Reconcile(ctx context.Context, n *easypay.TransactionNotification) *reconcile.Result
}

type Publisher interface {
	Publish(ctx context.Context, ev eventbus.Event)
}

// Receipt is what the dispatcher did with an accepted notification.
type Receipt struct {
	Kind           easypay.NotificationKind
	Notification   easypay.Notification
	Reconciliation *reconcile.Result
}

// Dispatcher authenticates, decodes and routes webhook deliveries.
type Dispatcher struct {
	codes    map[easypay.NotificationKind]string
	engine   Reconciler
	bus      Publisher
	notifLog *notificationlog.Service
	metrics  *metrics.BusinessMetrics
	log      *zap.SugaredLogger
}

// CodesFromConfig maps the configured verification codes by kind.
func CodesFromConfig(c config.NotificationCodes) map[easypay.NotificationKind]string {
	return map[easypay.NotificationKind]string{
		easypay.NotificationKindGeneric:       c.Generic,
		easypay.NotificationKindAuthorisation: c.Authorisation,
		easypay.NotificationKindTransaction:   c.Transaction,
		easypay.NotificationKindMbway:         c.Mbway,
	}
}

func NewDispatcher(codes map[easypay.NotificationKind]string, engine Reconciler, bus Publisher, notifLog *notificationlog.Service, m *metrics.BusinessMetrics, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{codes: codes, engine: engine, bus: bus, notifLog: notifLog, metrics: m, log: log}
}

// Authenticate checks code against the code configured for kind. Kinds
// without a configured code accept any value.
func (d *Dispatcher) Authenticate(kind easypay.NotificationKind, code string) error {
	expected := d.codes[kind]
	if expected == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		return ErrPermissionDenied
	}
	return nil
}

// Dispatch handles one delivery. Only authentication, decoding and the
// authorisation gap are returned as errors; anything that goes wrong after
// that is logged and reported in the receipt.
func (d *Dispatcher) Dispatch(ctx context.Context, kind easypay.NotificationKind, code string, body []byte) (*Receipt, error) {
	log := logctx.FromCtx(ctx, d.log).With("kind", kind)

	if err := d.Authenticate(kind, code); err != nil {
		d.metrics.NotificationReceived(string(kind), outcomeForbidden)
		log.Warnw("notification_rejected", "error", err.Error())
		return nil, err
	}

	n, err := easypay.ParseNotification(kind, body)
	if err != nil {
		d.metrics.NotificationReceived(string(kind), outcomeMalformed)
		log.Warnw("notification_malformed", "error", err.Error())
		return nil, err
	}

	if kind == easypay.NotificationKindAuthorisation {
		d.metrics.NotificationReceived(string(kind), outcomeNotImplemented)
		log.Warnw("notification_not_implemented", "payment_id", n.PaymentID())
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, kind)
	}

	log = log.With("payment_id", n.PaymentID())
	data, _ := json.Marshal(n)
	d.notifLog.Save(ctx, d.logEntry(ctx, n, data, models.PaymentNotificationLogStatusReceived, nil))

	receipt := &Receipt{Kind: kind, Notification: n}
	var handleErr error
	if tn, ok := n.(*easypay.TransactionNotification); ok {
		rctx := context.WithValue(ctx, payment_record.NotificationKindKey, kind)
		receipt.Reconciliation = d.engine.Reconcile(rctx, tn)
		if receipt.Reconciliation.Failed() {
			handleErr = receipt.Reconciliation.Err
		}
	}

	result := map[string]any{}
	if receipt.Reconciliation != nil {
		result["reconciliation"] = receipt.Reconciliation
	}
	status, outcome := models.PaymentNotificationLogStatusHandled, outcomeHandled
	if handleErr != nil {
		result["error"] = handleErr.Error()
		status, outcome = models.PaymentNotificationLogStatusHandleFailed, outcomeHandleFailed
	}
	resBytes, _ := json.Marshal(result)
	d.notifLog.Save(ctx, d.logEntry(ctx, n, data, status, resBytes))

	d.bus.Publish(ctx, eventbus.Event{
		Kind:           kind,
		TraceID:        logctx.TraceID(ctx),
		Notification:   n,
		Reconciliation: receipt.Reconciliation,
	})

	d.metrics.NotificationReceived(string(kind), outcome)
	log.Infow("notification_handled", "outcome", outcome)
	return receipt, nil
}

func (d *Dispatcher) logEntry(ctx context.Context, n easypay.Notification, data []byte, status models.PaymentNotificationLogStatus, result []byte) *models.PaymentNotificationLog {
	entry := &models.PaymentNotificationLog{
		Kind:             string(n.Kind()),
		EasypayID:        n.PaymentID(),
		MerchantKey:      n.MerchantKey(),
		TraceID:          logctx.TraceID(ctx),
		NotificationTime: time.Now(),
		Data:             datatypes.JSON(data),
		Status:           status,
	}
	if tx := n.TransactionInfo(); tx != nil {
		entry.TransactionID = tx.ID
	}
	if result != nil {
		j := datatypes.JSON(result)
		entry.Result = &j
	}
	return entry
}
