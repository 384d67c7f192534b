package notification

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type handlerFunc func(ctx context.Context, evt Event)

func (f handlerFunc) Dispatch(ctx context.Context, evt Event) { f(ctx, evt) }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestOutboxDeliversAndDrains(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var got []string
	o := NewOutbox(handlerFunc(func(_ context.Context, evt Event) {
		mu.Lock()
		got = append(got, evt.Notification.Title)
		mu.Unlock()
	}), discard(), WithWorkers(1), WithBuffer(8))

	o.Start()
	for _, title := range []string{"a", "b", "c"} {
		o.Publish(context.Background(), Event{Notification: &CreateRequest{Title: title, Type: TypeSystem}})
	}
	if err := o.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("delivered = %v, want [a b c]", got)
	}
}

func TestOutboxDropsWhenFull(t *testing.T) {
	t.Parallel()

	var n int
	o := NewOutbox(handlerFunc(func(context.Context, Event) { n++ }), discard(), WithBuffer(2), WithWorkers(1))

	// Not started: the queue fills and the third event is dropped.
	for i := 0; i < 3; i++ {
		o.Publish(context.Background(), Event{AdminEmail: &Email{Subject: "x"}})
	}
	if len(o.events) != 2 {
		t.Fatalf("queued = %d, want 2", len(o.events))
	}

	o.Start()
	if err := o.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("delivered = %d, want 2", n)
	}

	o.Publish(context.Background(), Event{AdminEmail: &Email{Subject: "late"}})
	if len(o.events) != 0 {
		t.Errorf("event accepted after Stop")
	}
}

func TestOutboxSurvivesPanickingHandler(t *testing.T) {
	t.Parallel()

	done := make(chan struct{}, 2)
	o := NewOutbox(handlerFunc(func(_ context.Context, evt Event) {
		done <- struct{}{}
		if evt.AdminEmail.Subject == "boom" {
			panic("handler failed")
		}
	}), discard(), WithWorkers(1))
	o.Start()
	defer o.Stop(context.Background()) //nolint:errcheck

	o.Publish(context.Background(), Event{AdminEmail: &Email{Subject: "boom"}})
	o.Publish(context.Background(), Event{AdminEmail: &Email{Subject: "fine"}})
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("outbox stopped handling events after a panic")
		}
	}
}
