package notification

import (
	"context"
	"time"
)

// Recorder is the Publisher business services use. Notification rows are
// written before Publish returns; only the live push and email are queued.
type Recorder struct {
	dispatcher *Dispatcher
	queue      Publisher
	timeout    time.Duration
}

func NewRecorder(dispatcher *Dispatcher, queue Publisher) *Recorder {
	return &Recorder{dispatcher: dispatcher, queue: queue, timeout: 10 * time.Second}
}

// Publish records evt's rows under a context detached from the caller's
// cancellation, then hands the remainder to the queue.
func (r *Recorder) Publish(ctx context.Context, evt Event) {
	if evt.Notification != nil {
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		evt = r.dispatcher.Record(wctx, evt)
		cancel()
	}
	if evt.Live == nil && evt.AdminEmail == nil && len(evt.Emails) == 0 {
		return
	}
	r.queue.Publish(ctx, evt)
}
