// Package events carries outbound notifications from the engine to whoever listens.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// FleetUpdated is emitted after units are merged into a fleet.
type FleetUpdated struct {
	FleetID   string    `json:"fleet_id"`
	EmpireID  string    `json:"empire_id"`
	UnitCount int64     `json:"unit_count"`
	At        time.Time `json:"at"`
}

// Bus is a buffered, best-effort event channel. Publishing never blocks; when the
// buffer is full the event is dropped and counted.
type Bus struct {
	fleet   chan FleetUpdated
	dropped atomic.Int64
	closed  bool
	once    sync.Once
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewBus creates a bus holding up to buffer undelivered events.
func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer < 0 {
		buffer = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{fleet: make(chan FleetUpdated, buffer), logger: logger}
}

// PublishFleetUpdated enqueues an event and reports whether it was accepted.
func (b *Bus) PublishFleetUpdated(ev FleetUpdated) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	select {
	case b.fleet <- ev:
		return true
	default:
		n := b.dropped.Add(1)
		b.logger.Warn("fleet event dropped", "fleet_id", ev.FleetID, "empire_id", ev.EmpireID, "dropped_total", n)
		return false
	}
}

// FleetUpdates is the receive side.
func (b *Bus) FleetUpdates() <-chan FleetUpdated {
	return b.fleet
}

// Dropped returns how many events were discarded.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close stops accepting events and closes the channel.
func (b *Bus) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.fleet)
		b.mu.Unlock()
	})
}
