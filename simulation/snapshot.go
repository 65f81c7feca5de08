package simulation

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rttrpmbridge/core/remoteobject"
)

// Snapshot is the floats-only view of the store produced after every state
// change: address -> id -> values. Ints are widened to float64; strings and
// none are omitted.
type Snapshot map[remoteobject.Address]map[remoteobject.Id][]float64

// SnapshotListener receives snapshots off the tick/write goroutine.
type SnapshotListener func(Snapshot)

// snapshotQueueDepth bounds the per-listener delivery channel. A listener
// that falls behind has its queue coalesced down to the newest snapshot
// rather than blocking the producer, per spec.md §4.G's "may coalesce by
// keeping only the most recent undelivered snapshot per listener".
const snapshotQueueDepth = 1

// SnapshotHub fans out snapshots to registered listeners, each on its own
// consumer goroutine, so listener code never runs on the tick or write
// goroutine. Grounded on DS100_DeviceSimulation_Listener/notifyListeners,
// translated from JUCE's MessageListener::postMessage queued-delivery idiom
// to a buffered channel per listener.
type SnapshotHub struct {
	subs   []*subscription
	logger zerolog.Logger
}

type subscription struct {
	ch chan Snapshot
}

// HubOption configures a SnapshotHub at construction time.
type HubOption func(*SnapshotHub)

// WithHubLogger overrides the hub's logger. The default is the global
// zerolog logger with a "component" field of "simulation.SnapshotHub".
func WithHubLogger(logger zerolog.Logger) HubOption {
	return func(h *SnapshotHub) { h.logger = logger }
}

// NewSnapshotHub returns an empty hub.
func NewSnapshotHub(opts ...HubOption) *SnapshotHub {
	h := &SnapshotHub{logger: log.With().Str("component", "simulation.SnapshotHub").Logger()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddListener registers l to receive every future snapshot on its own
// goroutine, and returns a function that unregisters it.
func (h *SnapshotHub) AddListener(l SnapshotListener) (remove func()) {
	sub := &subscription{ch: make(chan Snapshot, snapshotQueueDepth)}
	h.subs = append(h.subs, sub)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case snap, ok := <-sub.ch:
				if !ok {
					return
				}
				l(snap)
			case <-done:
				return
			}
		}
	}()

	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		close(done)
		for i, s := range h.subs {
			if s == sub {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				break
			}
		}
	}
}

// Notify hands snap to every subscriber's queue. A subscriber whose queue is
// already full has its pending snapshot replaced by snap, so each listener
// always eventually observes the most recent state rather than blocking the
// caller.
func (h *SnapshotHub) Notify(snap Snapshot) {
	for _, sub := range h.subs {
		select {
		case sub.ch <- snap:
		default:
			select {
			case <-sub.ch:
				h.logger.Debug().Msg("coalesced pending snapshot: listener fell behind")
			default:
			}
			select {
			case sub.ch <- snap:
			default:
			}
		}
	}
}
