package eventbus

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app/service/reconcile"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/logctx"
)

// Event is published once per accepted notification, after any
// reconciliation has been attempted.
type Event struct {
	Kind         easypay.NotificationKind
	TraceID      string
	Notification easypay.Notification
	// Reconciliation is set for transaction notifications only.
	Reconciliation *reconcile.Result
}

func (ev Event) PaymentID() string {
	if ev.Notification == nil {
		return ""
	}
	return ev.Notification.PaymentID()
}

// Subscriber reacts to an event. Errors are logged and otherwise ignored.
type Subscriber func(ctx context.Context, ev Event) error

// Bus fans events out to subscribers registered per notification kind.
type Bus struct {
	mu   sync.RWMutex
	subs map[easypay.NotificationKind][]Subscriber
	log  *zap.SugaredLogger
	wg   sync.WaitGroup
}

func New(log *zap.SugaredLogger) *Bus {
	return &Bus{subs: make(map[easypay.NotificationKind][]Subscriber), log: log}
}

func (b *Bus) Subscribe(kind easypay.NotificationKind, s Subscriber) {
	if s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], s)
}

// Publish hands ev to every subscriber of its kind on separate goroutines
// and returns immediately.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[ev.Kind]...)
	b.mu.RUnlock()

	// subscribers outlive the webhook request
	ctx = context.WithoutCancel(ctx)
	for _, s := range subs {
		b.wg.Add(1)
		go func(s Subscriber) {
			defer b.wg.Done()
			if err := b.deliver(ctx, s, ev); err != nil {
				logctx.FromCtx(ctx, b.log).Errorw("event_subscriber_failed", "kind", ev.Kind, "payment_id", ev.PaymentID(), "error", err.Error())
			}
		}(s)
	}
}

func (b *Bus) deliver(ctx context.Context, s Subscriber, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return s(ctx, ev)
}

// Wait blocks until all in-flight deliveries finish.
func (b *Bus) Wait() {
	b.wg.Wait()
}

func registerDrain(lc fx.Lifecycle, b *Bus) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				b.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerDrain),
)
