package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/models"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/types"
)

// memStore is an in-memory payment_record.Store with version checks.
type memStore struct {
	mu       sync.Mutex
	records  map[string]models.PaymentRecord
	saves    int
	creates  int
	staleFor int // number of Save calls to reject with ErrStaleRecord
	findErr  error
}

func newMemStore(recs ...models.PaymentRecord) *memStore {
	s := &memStore{records: map[string]models.PaymentRecord{}}
	for _, r := range recs {
		s.records[r.EasypayID] = r
	}
	return s
}

func (s *memStore) FindByExternalID(_ context.Context, id string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", payment_record.ErrRecordNotFound, id)
	}
	return &r, nil
}

func (s *memStore) Create(_ context.Context, mk string, amount decimal.Decimal, res *easypay.PaymentResponse, p *types.Principal) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	rec, err := payment_record.NewRecord(mk, amount, res, p)
	if err != nil {
		return nil, err
	}
	s.records[rec.EasypayID] = *rec
	return rec, nil
}

func (s *memStore) Save(_ context.Context, rec *models.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleFor > 0 {
		s.staleFor--
		cur := s.records[rec.EasypayID]
		cur.Version++
		s.records[rec.EasypayID] = cur
		return payment_record.ErrStaleRecord
	}
	cur, ok := s.records[rec.EasypayID]
	if !ok {
		return payment_record.ErrRecordNotFound
	}
	if cur.Version != rec.Version {
		return payment_record.ErrStaleRecord
	}
	rec.Version++
	s.records[rec.EasypayID] = *rec
	s.saves++
	return nil
}

func (s *memStore) get(id string) (models.PaymentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	return r, ok
}

// stubFetcher answers GetPayment with a fixed status or error.
type stubFetcher struct {
	mu       sync.Mutex
	status   easypay.MethodStatus
	err      error
	calls    int
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *stubFetcher) GetPayment(_ context.Context, id string) (*easypay.PaymentResponse, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if cur <= seen || f.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &easypay.PaymentResponse{ID: id, Method: &easypay.PaymentMethod{Type: easypay.MethodTypeMultibanco, Status: f.status}}, nil
}

func pendingRecord(id string) models.PaymentRecord {
	return models.PaymentRecord{ID: "rec-" + id, EasypayID: id, Status: easypay.MethodStatusPending, Version: 1}
}

func txNotification(id string) *easypay.TransactionNotification {
	return &easypay.TransactionNotification{NotificationPayload: easypay.NotificationPayload{
		ID:          id,
		Transaction: &easypay.Transaction{ID: id},
	}}
}

func newTestEngine(store payment_record.Store, f StatusFetcher) *Engine {
	return NewEngine(store, f, zap.NewNop().Sugar(), nil, Options{Timeout: time.Second})
}

func TestReconcile_AppliesFetchedStatusAndIsIdempotent(t *testing.T) {
	store := newMemStore(pendingRecord("abc-123"))
	fetcher := &stubFetcher{status: easypay.MethodStatusCaptured}
	e := newTestEngine(store, fetcher)

	res := e.Reconcile(context.Background(), txNotification("abc-123"))
	require.Equal(t, OutcomeUpdated, res.Outcome)
	require.Equal(t, easypay.MethodStatusPending, res.PreviousStatus)
	require.Equal(t, easypay.MethodStatusCaptured, res.Status)
	require.NoError(t, res.Err)

	first, _ := store.get("abc-123")
	require.Equal(t, easypay.MethodStatusCaptured, first.Status)

	res = e.Reconcile(context.Background(), txNotification("abc-123"))
	require.Equal(t, OutcomeUnchanged, res.Outcome)

	second, _ := store.get("abc-123")
	require.Equal(t, first, second)
	require.Equal(t, 1, store.saves)
	require.Equal(t, 2, fetcher.calls)
}

func TestReconcile_MissDoesNotCreate(t *testing.T) {
	store := newMemStore()
	fetcher := &stubFetcher{status: easypay.MethodStatusPaid}
	e := newTestEngine(store, fetcher)

	res := e.Reconcile(context.Background(), txNotification("abc-123"))
	require.Equal(t, OutcomeMiss, res.Outcome)
	require.NoError(t, res.Err)
	require.False(t, res.Failed())
	require.Zero(t, store.creates)
	_, ok := store.get("abc-123")
	require.False(t, ok)
	require.Zero(t, fetcher.calls)
}

func TestReconcile_GatewayFailureLeavesRecordUnchanged(t *testing.T) {
	store := newMemStore(pendingRecord("abc-123"))
	fetcher := &stubFetcher{err: easypay.NewGatewayError(http.StatusInternalServerError, []byte("upstream down"))}
	e := newTestEngine(store, fetcher)

	res := e.Reconcile(context.Background(), txNotification("abc-123"))
	require.True(t, res.Failed())
	var gerr *easypay.GatewayError
	require.True(t, errors.As(res.Err, &gerr))
	require.Equal(t, 1, res.Attempts)

	rec, _ := store.get("abc-123")
	require.Equal(t, easypay.MethodStatusPending, rec.Status)
	require.Zero(t, store.saves)
}

func TestReconcile_StoreUnavailable(t *testing.T) {
	store := newMemStore()
	store.findErr = fmt.Errorf("%w: connection refused", payment_record.ErrStoreUnavailable)
	e := newTestEngine(store, &stubFetcher{status: easypay.MethodStatusPaid})

	res := e.Reconcile(context.Background(), txNotification("abc-123"))
	require.True(t, res.Failed())
	require.True(t, errors.Is(res.Err, payment_record.ErrStoreUnavailable))
}

func TestReconcile_MissingIdentifier(t *testing.T) {
	e := newTestEngine(newMemStore(), &stubFetcher{})

	for _, n := range []*easypay.TransactionNotification{
		nil,
		{NotificationPayload: easypay.NotificationPayload{ID: "abc-123"}},
		{NotificationPayload: easypay.NotificationPayload{ID: "abc-123", Transaction: &easypay.Transaction{ID: " "}}},
	} {
		res := e.Reconcile(context.Background(), n)
		require.True(t, res.Failed())
		require.True(t, errors.Is(res.Err, ErrMissingIdentifier))
	}
}

func TestReconcile_SkippedWithoutStore(t *testing.T) {
	fetcher := &stubFetcher{status: easypay.MethodStatusPaid}
	e := newTestEngine(nil, fetcher)

	res := e.Reconcile(context.Background(), txNotification("abc-123"))
	require.Equal(t, OutcomeSkipped, res.Outcome)
	require.Zero(t, fetcher.calls)
}

func TestReconcile_RetriesStaleSave(t *testing.T) {
	store := newMemStore(pendingRecord("abc-123"))
	store.staleFor = 1
	fetcher := &stubFetcher{status: easypay.MethodStatusPaid}
	e := newTestEngine(store, fetcher)

	res := e.Reconcile(context.Background(), txNotification("abc-123"))
	require.Equal(t, OutcomeUpdated, res.Outcome)
	require.Equal(t, 2, res.Attempts)
	require.Equal(t, 2, fetcher.calls)

	rec, _ := store.get("abc-123")
	require.Equal(t, easypay.MethodStatusPaid, rec.Status)
}

func TestReconcile_GivesUpAfterMaxStaleAttempts(t *testing.T) {
	store := newMemStore(pendingRecord("abc-123"))
	store.staleFor = 10
	e := NewEngine(store, &stubFetcher{status: easypay.MethodStatusPaid}, zap.NewNop().Sugar(), nil, Options{MaxAttempts: 2})

	res := e.Reconcile(context.Background(), txNotification("abc-123"))
	require.True(t, res.Failed())
	require.Equal(t, 2, res.Attempts)
	require.True(t, errors.Is(res.Err, payment_record.ErrStaleRecord))
}

func TestReconcile_SerializesSameExternalID(t *testing.T) {
	store := newMemStore(pendingRecord("abc-123"))
	fetcher := &stubFetcher{status: easypay.MethodStatusPaid, delay: 5 * time.Millisecond}
	e := newTestEngine(store, fetcher)

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Reconcile(context.Background(), txNotification("abc-123"))
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, fetcher.maxSeen.Load())
	updated := 0
	for _, r := range results {
		require.False(t, r.Failed())
		if r.Outcome == OutcomeUpdated {
			updated++
		}
	}
	require.Equal(t, 1, updated)
	require.Equal(t, 1, store.saves)
}

// rendezvousFetcher only answers once want callers are inside GetPayment.
type rendezvousFetcher struct {
	want    int32
	entered atomic.Int32
	all     chan struct{}
}

func (f *rendezvousFetcher) GetPayment(_ context.Context, id string) (*easypay.PaymentResponse, error) {
	if f.entered.Add(1) == f.want {
		close(f.all)
	}
	select {
	case <-f.all:
	case <-time.After(time.Second):
		return nil, errors.New("reconciliations were serialized")
	}
	return &easypay.PaymentResponse{ID: id, Method: &easypay.PaymentMethod{Status: easypay.MethodStatusPaid}}, nil
}

func TestReconcile_DifferentExternalIDsRunInParallel(t *testing.T) {
	store := newMemStore(pendingRecord("abc-123"), pendingRecord("def-456"))
	fetcher := &rendezvousFetcher{want: 2, all: make(chan struct{})}
	e := newTestEngine(store, fetcher)

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	for i, id := range []string{"abc-123", "def-456"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.Reconcile(context.Background(), txNotification(id))
		}()
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, OutcomeUpdated, r.Outcome, r.Err)
	}
}

func TestReconcile_IgnoresCanceledRequestContext(t *testing.T) {
	store := newMemStore(pendingRecord("abc-123"))
	e := newTestEngine(store, &stubFetcher{status: easypay.MethodStatusPaid})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := e.Reconcile(ctx, txNotification("abc-123"))
	require.Equal(t, OutcomeUpdated, res.Outcome)
}
