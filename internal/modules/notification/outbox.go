package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/georgemunganga/printpress-backend/internal/metrics"
)

// Publisher accepts events from business services.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, evt Event)

func (f PublisherFunc) Publish(ctx context.Context, evt Event) { f(ctx, evt) }

// EventHandler consumes events taken off the outbox.
type EventHandler interface {
	Dispatch(ctx context.Context, evt Event)
}

// OutboxOption configures an Outbox.
type OutboxOption func(*Outbox)

// WithBuffer sets the queue capacity.
func WithBuffer(n int) OutboxOption {
	return func(o *Outbox) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// WithWorkers sets the number of consumer goroutines.
func WithWorkers(n int) OutboxOption {
	return func(o *Outbox) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithEventTimeout bounds how long a single event may take to deliver.
func WithEventTimeout(d time.Duration) OutboxOption {
	return func(o *Outbox) { o.timeout = d }
}

// Outbox is a bounded in-process queue between committed business
// transactions and notification delivery. When the queue is full the event
// is dropped.
type Outbox struct {
	handler EventHandler
	logger  *slog.Logger
	buffer  int
	workers int
	timeout time.Duration

	events  chan Event
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	stopped bool
}

func NewOutbox(handler EventHandler, logger *slog.Logger, opts ...OutboxOption) *Outbox {
	o := &Outbox{
		handler: handler,
		logger:  logger,
		buffer:  256,
		workers: 2,
		timeout: 30 * time.Second,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.events = make(chan Event, o.buffer)
	return o
}

// Start launches the workers. It returns immediately.
func (o *Outbox) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running || o.stopped {
		return
	}
	o.running = true

	o.logger.Info("notification outbox starting", "workers", o.workers, "buffer", o.buffer)
	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.loop()
	}
}

// Publish enqueues evt without blocking, or drops it when the queue is full
// or stopped.
func (o *Outbox) Publish(_ context.Context, evt Event) {
	o.mu.Lock()
	stopped := o.stopped
	o.mu.Unlock()
	if stopped {
		metrics.OutboxEvents.WithLabelValues("dropped").Inc()
		o.logger.Warn("notification outbox stopped, event dropped", "event", describe(evt))
		return
	}

	select {
	case o.events <- evt:
		metrics.OutboxEvents.WithLabelValues("queued").Inc()
	default:
		metrics.OutboxEvents.WithLabelValues("dropped").Inc()
		o.logger.Warn("notification outbox full, event dropped", "event", describe(evt), "buffer", o.buffer)
	}
}

// Stop signals the workers, lets them drain what is queued and waits until
// they exit or ctx is done.
func (o *Outbox) Stop(ctx context.Context) error {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return nil
	}
	o.stopped = true
	running := o.running
	o.mu.Unlock()

	if !running {
		return nil
	}
	close(o.stopCh)

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		o.logger.Info("notification outbox stopped")
		return nil
	case <-ctx.Done():
		o.logger.Warn("notification outbox shutdown timed out", "pending", len(o.events))
		return ctx.Err()
	}
}

func (o *Outbox) loop() {
	defer o.wg.Done()
	for {
		select {
		case evt := <-o.events:
			o.handle(evt)
		case <-o.stopCh:
			for {
				select {
				case evt := <-o.events:
					o.handle(evt)
				default:
					return
				}
			}
		}
	}
}

func (o *Outbox) handle(evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			metrics.OutboxEvents.WithLabelValues("panicked").Inc()
			o.logger.Error("notification handler panicked", "event", describe(evt), "panic", r)
		}
	}()

	o.handler.Dispatch(ctx, evt)
	metrics.OutboxEvents.WithLabelValues("delivered").Inc()
}

func describe(evt Event) string {
	switch {
	case evt.Notification != nil:
		return string(evt.Notification.Type)
	case evt.Live != nil:
		return string(evt.Live.Type)
	case evt.AdminEmail != nil:
		return evt.AdminEmail.Subject
	case len(evt.Emails) > 0:
		return evt.Emails[0].Subject
	}
	return "empty"
}
