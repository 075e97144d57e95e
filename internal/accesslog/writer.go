// Package accesslog persists the append-only access trail written by the
// authorization gate. Writes ride a buffered queue drained by a background
// goroutine: a slow or unreachable log store can drop entries but can never
// block or fail an authorized request.
package accesslog

import (
	"context"
	"sync"
	"time"

	"github.com/dspedroborges/store-api/internal/auth"
	"github.com/dspedroborges/store-api/internal/obs"
)

const (
	// DefaultBuffer bounds the in-flight queue.
	DefaultBuffer = 256

	appendTimeout = 5 * time.Second
)

// Writer queues access log entries for best-effort persistence.
type Writer struct {
	sink  auth.AccessLogStore
	queue chan auth.AccessLogEntry

	closeOnce sync.Once
	done      chan struct{}
}

// New starts a Writer draining into the sink. A non-positive buffer falls
// back to DefaultBuffer.
func New(sink auth.AccessLogStore, buffer int) *Writer {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	w := &Writer{
		sink:  sink,
		queue: make(chan auth.AccessLogEntry, buffer),
		done:  make(chan struct{}),
	}
	go w.drain()
	return w
}

// Record enqueues an entry without blocking. When the queue is full the entry
// is dropped and counted; the caller's request proceeds regardless.
func (w *Writer) Record(entry auth.AccessLogEntry) {
	select {
	case w.queue <- entry:
	default:
		obs.AccessLogEntryDropped()
	}
}

// Close stops accepting entries, flushes the queue and waits for the drain
// goroutine to finish.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		close(w.queue)
	})
	<-w.done
}

func (w *Writer) drain() {
	defer close(w.done)
	for entry := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		if err := w.sink.Append(ctx, &entry); err != nil {
			obs.LogRequest(map[string]any{
				"ts":    time.Now().UTC().Format(time.RFC3339Nano),
				"level": "error",
				"msg":   "access log append failed",
				"error": err.Error(),
			})
		}
		cancel()
	}
}
