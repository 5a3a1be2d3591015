package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moby/locker"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/logctx"
	"github.com/fatflowers/easypay/pkg/metrics"
)

// ErrMissingIdentifier is reported when a notification carries no transaction id.
var ErrMissingIdentifier = errors.New("notification has no transaction id")

const defaultMaxAttempts = 3

type Outcome string

const (
	// OutcomeUpdated means the record status changed to the fetched status.
	OutcomeUpdated Outcome = "updated"
	// OutcomeUnchanged means the record already had the fetched status.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeMiss means no local record tracks the payment.
	OutcomeMiss Outcome = "miss"
	// OutcomeSkipped means persistence is disabled.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the id was missing or a step failed; Result.Err says which.
	OutcomeFailed Outcome = "failed"
)

// Result describes one reconciliation. Failures are reported here rather
// than returned, so callers can always acknowledge the webhook.
type Result struct {
	ExternalID     string               `json:"external_id"`
	Outcome        Outcome              `json:"outcome"`
	PreviousStatus easypay.MethodStatus `json:"previous_status,omitempty"`
	Status         easypay.MethodStatus `json:"status,omitempty"`
	Attempts       int                  `json:"attempts"`
	Err            error                `json:"-"`
}

func (r *Result) Failed() bool { return r != nil && r.Outcome == OutcomeFailed }

// StatusFetcher returns the authoritative state of a payment.
type StatusFetcher interface {
	GetPayment(ctx context.Context, id string) (*easypay.PaymentResponse, error)
}

type Options struct {
	// Timeout bounds a whole reconciliation, including retries.
	Timeout time.Duration
	// MaxAttempts caps find-fetch-save runs when the store reports a stale record.
	MaxAttempts int
}

// Engine converges local payment records onto the gateway's state whenever
// a transaction notification arrives.
type Engine struct {
	store       payment_record.Store
	fetcher     StatusFetcher
	locks       *locker.Locker
	log         *zap.SugaredLogger
	metrics     *metrics.BusinessMetrics
	timeout     time.Duration
	maxAttempts int
}

// NewEngine accepts a nil store, in which case every reconciliation is skipped.
func NewEngine(store payment_record.Store, fetcher StatusFetcher, log *zap.SugaredLogger, m *metrics.BusinessMetrics, opts Options) *Engine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &Engine{
		store:       store,
		fetcher:     fetcher,
		locks:       locker.New(),
		log:         log,
		metrics:     m,
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
	}
}

// Reconcile re-fetches the payment named by the notification's transaction
// and applies its status to the local record. The notification's own status
// fields are never used. Work for one external id is serialized; different
// ids run in parallel.
func (e *Engine) Reconcile(ctx context.Context, n *easypay.TransactionNotification) *Result {
	start := time.Now()
	res := &Result{}
	defer func() { e.metrics.Reconciled(string(res.Outcome), start) }()

	log := logctx.FromCtx(ctx, e.log)

	if n == nil || n.TransactionInfo() == nil || strings.TrimSpace(n.TransactionInfo().ID) == "" {
		res.Outcome = OutcomeFailed
		res.Err = ErrMissingIdentifier
		log.Warnw("reconcile_missing_identifier", "payment_id", paymentIDOf(n))
		return res
	}
	res.ExternalID = strings.TrimSpace(n.TransactionInfo().ID)
	log = log.With("easypay_id", res.ExternalID)

	if e.store == nil {
		res.Outcome = OutcomeSkipped
		log.Debugw("reconcile_skipped_no_store")
		return res
	}

	// the webhook caller may hang up; the unit still runs to completion
	ctx = context.WithoutCancel(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.locks.Lock(res.ExternalID)
	defer func() { _ = e.locks.Unlock(res.ExternalID) }()

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		res.Attempts = attempt
		err := e.syncOnce(ctx, log, res)
		if err == nil {
			return res
		}
		if errors.Is(err, payment_record.ErrStaleRecord) && attempt < e.maxAttempts {
			log.Infow("reconcile_stale_retry", "attempt", attempt, "error", err.Error())
			continue
		}
		res.Outcome = OutcomeFailed
		res.Err = err
		log.Errorw("reconcile_failed", "attempt", attempt, "error", err.Error())
		return res
	}
	return res
}

func (e *Engine) syncOnce(ctx context.Context, log *zap.SugaredLogger, res *Result) error {
	rec, err := e.store.FindByExternalID(ctx, res.ExternalID)
	if err != nil {
		if errors.Is(err, payment_record.ErrRecordNotFound) {
			res.Outcome = OutcomeMiss
			log.Infow("reconcile_miss")
			return nil
		}
		return fmt.Errorf("find payment record: %w", err)
	}

	remote, err := e.fetcher.GetPayment(ctx, res.ExternalID)
	if err != nil {
		return fmt.Errorf("fetch payment: %w", err)
	}
	status := remote.MethodStatus()
	if status == "" {
		return fmt.Errorf("fetch payment: gateway returned no method status")
	}
	if !status.Valid() {
		log.Warnw("reconcile_unknown_status", "status", status)
	}

	res.PreviousStatus = rec.Status
	res.Status = status
	if rec.Status == status {
		res.Outcome = OutcomeUnchanged
		log.Debugw("reconcile_unchanged", "status", status)
		return nil
	}

	rec.Status = status
	if rec.CustomerID == "" {
		rec.CustomerID = remote.CustomerID()
	}
	if err := e.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save payment record: %w", err)
	}
	res.Outcome = OutcomeUpdated
	log.Infow("reconcile_updated", "from", res.PreviousStatus, "to", status)
	return nil
}

func paymentIDOf(n *easypay.TransactionNotification) string {
	if n == nil {
		return ""
	}
	return n.PaymentID()
}
