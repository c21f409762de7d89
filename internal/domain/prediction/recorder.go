package prediction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/infra/eventbus"
)

const insertTimeout = 5 * time.Second

// Inserter is the write side of Store.
type Inserter interface {
	Insert(ctx context.Context, r Record) error
}

// Recorder persists prediction.served events.
type Recorder struct {
	store  Inserter
	logger *zap.Logger
}

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store Inserter, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger.Named("recorder")}
}

// Run consumes events until ctx is cancelled or the channel is closed. On
// cancellation the events already buffered are still written.
func (r *Recorder) Run(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			r.drain(events)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			r.record(evt)
		}
	}
}

func (r *Recorder) drain(events <-chan eventbus.Event) {
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			r.record(evt)
		default:
			return
		}
	}
}

func (r *Recorder) record(evt eventbus.Event) {
	rec, ok := evt.Payload.(Record)
	if !ok {
		r.logger.Warn("unexpected payload", zap.String("topic", evt.Topic))
		return
	}
	// Detached from the request context: the HTTP response is already sent.
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()
	if err := r.store.Insert(ctx, rec); err != nil {
		r.logger.Error("persist prediction failed", zap.String("id", rec.ID), zap.Error(err))
	}
}
