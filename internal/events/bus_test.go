package events_test

import (
	"testing"

	"github.com/rpggio/starbase/internal/events"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishIsNonBlocking(t *testing.T) {
	bus := events.NewBus(1, nil)

	require.True(t, bus.PublishFleetUpdated(events.FleetUpdated{FleetID: "f1", UnitCount: 1}))
	require.False(t, bus.PublishFleetUpdated(events.FleetUpdated{FleetID: "f2", UnitCount: 2}))
	require.Equal(t, int64(1), bus.Dropped())

	ev := <-bus.FleetUpdates()
	require.Equal(t, "f1", ev.FleetID)
}

func TestBus_CloseRejectsPublish(t *testing.T) {
	bus := events.NewBus(4, nil)
	bus.Close()
	bus.Close()

	require.False(t, bus.PublishFleetUpdated(events.FleetUpdated{FleetID: "f1"}))
	_, ok := <-bus.FleetUpdates()
	require.False(t, ok)
}
