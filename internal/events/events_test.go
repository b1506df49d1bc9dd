package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hqwei/stockdash/pkg/logger"
)

func newTestBus() *Bus {
	return NewBus(logger.New(logger.Config{Level: "error", Pretty: false}))
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus()

	var received []*Event
	bus.Subscribe(SnapshotLoaded, func(e *Event) {
		received = append(received, e)
	})

	bus.Publish(SnapshotLoaded, map[string]interface{}{"holdings": 3})
	bus.Publish(SnapshotLoadFailed, map[string]interface{}{"error": "boom"})

	if assert.Len(t, received, 1) {
		assert.Equal(t, SnapshotLoaded, received[0].Type)
		assert.Equal(t, 3, received[0].Data["holdings"])
		assert.False(t, received[0].Timestamp.IsZero())
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := newTestBus()

	count := 0
	unsubscribe := bus.Subscribe(SnapshotLoaded, func(*Event) { count++ })

	bus.Publish(SnapshotLoaded, nil)
	unsubscribe()
	bus.Publish(SnapshotLoaded, nil)

	assert.Equal(t, 1, count)
}

func TestBus_MultipleHandlers(t *testing.T) {
	bus := newTestBus()

	a, b := 0, 0
	bus.Subscribe(SnapshotLoadFailed, func(*Event) { a++ })
	bus.Subscribe(SnapshotLoadFailed, func(*Event) { b++ })

	bus.Publish(SnapshotLoadFailed, nil)

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
