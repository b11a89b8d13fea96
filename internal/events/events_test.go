package events

import (
	"context"
	"testing"

	"campuspaws/internal/logger"

	"github.com/stretchr/testify/assert"
)

type countingHandler struct {
	seen []Kind
}

func (h *countingHandler) HandleEvent(ctx context.Context, event Event) {
	h.seen = append(h.seen, event.Kind)
}

type panickyHandler struct{}

func (panickyHandler) HandleEvent(ctx context.Context, event Event) {
	panic("boom")
}

func TestBusFanOut(t *testing.T) {
	bus := NewBus(logger.Discard())
	first := &countingHandler{}
	second := &countingHandler{}
	bus.Subscribe(first)
	bus.Subscribe(second)

	bus.Emit(context.Background(), Event{Kind: KindTaskCreated})
	bus.Emit(context.Background(), Event{Kind: KindTaskCompleted})

	assert.Equal(t, []Kind{KindTaskCreated, KindTaskCompleted}, first.seen)
	assert.Equal(t, []Kind{KindTaskCreated, KindTaskCompleted}, second.seen)
}

func TestBusRecoversHandlerPanic(t *testing.T) {
	bus := NewBus(logger.Discard())
	after := &countingHandler{}
	bus.Subscribe(panickyHandler{})
	bus.Subscribe(after)

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), Event{Kind: KindMedicalRecordCreated})
	})
	// The panic stops at the bus; later handlers still run.
	assert.Equal(t, []Kind{KindMedicalRecordCreated}, after.seen)
}

func TestBusEmitWithoutHandlers(t *testing.T) {
	bus := NewBus(logger.Discard())
	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), Event{Kind: KindTaskCreated})
	})
}
