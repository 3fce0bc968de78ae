package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadscoring_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	payload string
}

func (e testEvent) EventName() string { return "test.event" }

func TestPublishSyncDeliversToAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var got []string
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
			e := event.(testEvent)
			got = append(got, e.payload)
			return nil
		}))
	}

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), payload: "hello"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("delivered to %d handlers, want 3", len(got))
	}
	for _, p := range got {
		if p != "hello" {
			t.Fatalf("payload = %q, want hello", p)
		}
	}
}

func TestPublishSyncReturnsHandlerError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	wantErr := errors.New("handler failed")

	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		return wantErr
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestPublishWithNoSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
}

func TestPublishDeliversAsynchronously(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	delivered := make(chan string, 1)
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		delivered <- event.(testEvent).payload
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), payload: "hello"})

	select {
	case p := <-delivered:
		if p != "hello" {
			t.Fatalf("payload = %q, want hello", p)
		}
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}
