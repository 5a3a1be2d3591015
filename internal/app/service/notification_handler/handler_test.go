package notification_handler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app/service/eventbus"
	notificationlog "github.com/fatflowers/easypay/internal/app/service/notification_log"
	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/app/service/reconcile"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/config"
	"github.com/fatflowers/easypay/pkg/logctx"
)

type fakeReconciler struct {
	calls  []*easypay.TransactionNotification
	kinds  []any
	result *reconcile.Result
}

func (f *fakeReconciler) Reconcile(ctx context.Context, n *easypay.TransactionNotification) *reconcile.Result {
	f.calls = append(f.calls, n)
	f.kinds = append(f.kinds, ctx.Value(payment_record.NotificationKindKey))
	if f.result != nil {
		return f.result
	}
	return &reconcile.Result{ExternalID: n.TransactionInfo().ID, Outcome: reconcile.OutcomeMiss, Attempts: 1}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

const transactionBody = `{
	"id": "abc-123",
	"value": 10.5,
	"currency": "EUR",
	"key": "mk-1",
	"method": "mb",
	"transaction": {"id": "abc-123", "key": "tk-1", "values": {"requested": 10.5, "paid": 10.5}}
}`

func newTestDispatcher(codes map[easypay.NotificationKind]string) (*Dispatcher, *fakeReconciler, *recordingPublisher) {
	rec := &fakeReconciler{}
	pub := &recordingPublisher{}
	log := zap.NewNop().Sugar()
	return NewDispatcher(codes, rec, pub, notificationlog.New(nil, log), nil, log), rec, pub
}

func TestDispatch_RejectsCodeMismatchBeforeParsing(t *testing.T) {
	d, rec, pub := newTestDispatcher(map[easypay.NotificationKind]string{
		easypay.NotificationKindTransaction: "s3cret",
	})

	for _, code := range []string{"", "wrong"} {
		_, err := d.Dispatch(context.Background(), easypay.NotificationKindTransaction, code, []byte("{not json"))
		require.ErrorIs(t, err, ErrPermissionDenied)
	}
	require.Empty(t, rec.calls)
	require.Empty(t, pub.events)

	_, err := d.Dispatch(context.Background(), easypay.NotificationKindTransaction, "s3cret", []byte(transactionBody))
	require.NoError(t, err)
}

func TestDispatch_UnconfiguredCodeAcceptsAnyHeader(t *testing.T) {
	d, _, _ := newTestDispatcher(CodesFromConfig(configCodes("", "", "", "")))
	require.NoError(t, d.Authenticate(easypay.NotificationKindGeneric, ""))
	require.NoError(t, d.Authenticate(easypay.NotificationKindMbway, "whatever"))
}

func TestDispatch_Malformed(t *testing.T) {
	d, rec, pub := newTestDispatcher(nil)

	_, err := d.Dispatch(context.Background(), easypay.NotificationKindTransaction, "", []byte("{not json"))
	require.ErrorIs(t, err, easypay.ErrMalformedNotification)

	_, err = d.Dispatch(context.Background(), easypay.NotificationKindMbway, "", nil)
	require.ErrorIs(t, err, easypay.ErrMalformedNotification)

	require.Empty(t, rec.calls)
	require.Empty(t, pub.events)
}

func TestDispatch_AuthorisationIsNotImplemented(t *testing.T) {
	d, rec, pub := newTestDispatcher(nil)

	_, err := d.Dispatch(context.Background(), easypay.NotificationKindAuthorisation, "", []byte(`{"id":"abc-123","status":"success"}`))
	require.ErrorIs(t, err, ErrNotImplemented)
	require.Empty(t, rec.calls)
	require.Empty(t, pub.events)
}

func TestDispatch_TransactionMissStillPublishes(t *testing.T) {
	d, rec, pub := newTestDispatcher(nil)
	ctx := logctx.WithTraceID(context.Background(), "trace-1")

	receipt, err := d.Dispatch(ctx, easypay.NotificationKindTransaction, "", []byte(transactionBody))
	require.NoError(t, err)
	require.Equal(t, reconcile.OutcomeMiss, receipt.Reconciliation.Outcome)

	require.Len(t, rec.calls, 1)
	require.Equal(t, "abc-123", rec.calls[0].TransactionInfo().ID)
	require.Equal(t, easypay.NotificationKindTransaction, rec.kinds[0])

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	require.Equal(t, easypay.NotificationKindTransaction, ev.Kind)
	require.Equal(t, "trace-1", ev.TraceID)
	require.Equal(t, "abc-123", ev.PaymentID())
	require.Same(t, receipt.Reconciliation, ev.Reconciliation)
}

func TestDispatch_ReconcileFailureIsAbsorbed(t *testing.T) {
	d, rec, pub := newTestDispatcher(nil)
	rec.result = &reconcile.Result{ExternalID: "abc-123", Outcome: reconcile.OutcomeFailed, Err: errors.New("gateway down")}

	receipt, err := d.Dispatch(context.Background(), easypay.NotificationKindTransaction, "", []byte(transactionBody))
	require.NoError(t, err)
	require.True(t, receipt.Reconciliation.Failed())
	require.Len(t, pub.events, 1)
}

func TestDispatch_GenericAndMbwaySkipReconciliation(t *testing.T) {
	d, rec, pub := newTestDispatcher(nil)

	_, err := d.Dispatch(context.Background(), easypay.NotificationKindGeneric, "", []byte(`{"id":"abc-123","type":"capture","status":"success"}`))
	require.NoError(t, err)

	receipt, err := d.Dispatch(context.Background(), easypay.NotificationKindMbway, "", []byte("ep_cin=8103&ep_user=user&ep_status=ok&ep_key=abc-123&ep_value=10.5&t_key=mk-1"))
	require.NoError(t, err)
	require.Nil(t, receipt.Reconciliation)
	require.Equal(t, "mk-1", receipt.Notification.MerchantKey())

	require.Empty(t, rec.calls)
	require.Len(t, pub.events, 2)
	require.Equal(t, easypay.NotificationKindGeneric, pub.events[0].Kind)
	require.Equal(t, easypay.NotificationKindMbway, pub.events[1].Kind)
	require.Nil(t, pub.events[1].Reconciliation)
}

func configCodes(generic, authorisation, transaction, mbway string) config.NotificationCodes {
	return config.NotificationCodes{Generic: generic, Authorisation: authorisation, Transaction: transaction, Mbway: mbway}
}
