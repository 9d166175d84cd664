package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/neexbeast/skycast/internal/weather"
)

const saveTimeout = 10 * time.Second

// saver writes the saved list off the loop. Only the latest enqueued list
// is written; older ones that were never picked up are dropped.
type saver struct {
	store Store
	log   *slog.Logger
	onErr func(error)

	mu      sync.Mutex
	pending []weather.Place
	dirty   bool
	signal  chan struct{}
}

func newSaver(store Store, log *slog.Logger, onErr func(error)) *saver {
	return &saver{store: store, log: log, onErr: onErr, signal: make(chan struct{}, 1)}
}

func (sv *saver) enqueue(places []weather.Place) {
	sv.mu.Lock()
	sv.pending = places
	sv.dirty = true
	sv.mu.Unlock()

	select {
	case sv.signal <- struct{}{}:
	default:
	}
}

func (sv *saver) take() ([]weather.Place, bool) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if !sv.dirty {
		return nil, false
	}
	places := sv.pending
	sv.pending, sv.dirty = nil, false
	return places, true
}

// run writes until stop is closed, then flushes whatever is still pending.
// Writes are not tied to ctx cancellation so a late save still lands.
func (sv *saver) run(ctx context.Context, stop <-chan struct{}) {
	base := context.WithoutCancel(ctx)
	for {
		select {
		case <-sv.signal:
			sv.flush(base)
		case <-stop:
			sv.flush(base)
			return
		}
	}
}

func (sv *saver) flush(base context.Context) {
	places, ok := sv.take()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(base, saveTimeout)
	defer cancel()

	if err := sv.store.Save(ctx, places); err != nil {
		sv.log.Error("saving places failed", "count", len(places), "err", err)
		if sv.onErr != nil {
			sv.onErr(err)
		}
		return
	}
	sv.log.Debug("places saved", "count", len(places))
}
