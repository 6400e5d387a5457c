// Package live keeps the latest journals snapshot in memory and fans it out
// to subscribers. One Hub owns one store listener for the whole process.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/store"
)

// Snapshot is one delivery of the journals collection, newest first.
// Revision increases by one with every delivery.
type Snapshot struct {
	Revision uint64
	Entries  []models.Entry
}

// Hub is the process-wide entry listener
type Hub struct {
	entries store.EntryStore
	logger  *zap.SugaredLogger

	mu      sync.RWMutex
	current Snapshot
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once

	newBackOff func() backoff.BackOff
}

// NewHub creates a hub; call Run to start listening
func NewHub(entries store.EntryStore, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		entries: entries,
		logger:  logger,
		subs:    make(map[int]chan Snapshot),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Run keeps a listener open until ctx is cancelled or Close is called,
// re-establishing it with exponential backoff when the store drops it.
func (h *Hub) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-h.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	b := h.newBackOff()
	for {
		err := h.entries.WatchEntries(ctx, func(entries []models.Entry) {
			b.Reset()
			h.publish(entries)
		})
		if ctx.Err() != nil {
			return nil
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		h.logger.Warnw("entries listener stopped, reconnecting", "error", err, "retry_in", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (h *Hub) publish(entries []models.Entry) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.current = Snapshot{Revision: h.current.Revision + 1, Entries: entries}
	snap := h.current
	for _, ch := range h.subs {
		offer(ch, snap)
	}
	h.mu.Unlock()

	h.readyOnce.Do(func() { close(h.ready) })
}

// offer replaces a pending undelivered snapshot with the newer one, so a slow
// subscriber only ever sees the latest state.
func offer(ch chan Snapshot, snap Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

// Current returns the latest snapshot, waiting for the first delivery
func (h *Hub) Current(ctx context.Context) (Snapshot, error) {
	select {
	case <-h.ready:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current, nil
}

// Subscribe registers a subscriber. The channel receives the current snapshot
// first if one exists and is closed by cancel or Close.
func (h *Hub) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	if h.current.Revision > 0 {
		ch <- h.current
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Close stops the listener and closes every subscriber channel
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		for id, ch := range h.subs {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
		close(h.done)
	})
}
