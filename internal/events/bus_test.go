package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan SessionStateChangedEvent, 1)

	unsub := bus.Subscribe(func(e SessionStateChangedEvent) {
		received <- e
	})
	defer unsub()

	ev := SessionStateChangedEvent{
		CameraID:  "/dev/video0",
		From:      "opened",
		To:        "streaming",
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(ev)

	got := <-received
	if got.To != ev.To || got.CameraID != ev.CameraID {
		t.Errorf("Expected %+v, got %+v", ev, got)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan NoticeEvent, 1)
	received2 := make(chan NoticeEvent, 1)

	unsub1 := bus.Subscribe(func(e NoticeEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e NoticeEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(NoticeEvent{Text: "Unable to setup camera preview"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan CameraErrorEvent, 1)

	unsub := bus.Subscribe(func(e CameraErrorEvent) {
		received <- e
	})

	bus.Publish(CameraErrorEvent{Code: "DEVICE_ACCESS"})
	<-received

	unsub()

	bus.Publish(CameraErrorEvent{Code: "NO_CAMERA"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	stateReceived := make(chan bool, 1)
	previewReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ SessionStateChangedEvent) {
		stateReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ PreviewSelectedEvent) {
		previewReceived <- true
	})
	defer unsub2()

	bus.Publish(SessionStateChangedEvent{To: "opening"})
	<-stateReceived

	select {
	case <-previewReceived:
		t.Fatal("Preview subscriber should NOT have received SessionStateChangedEvent")
	case <-time.After(10 * time.Millisecond):
	}

	bus.Publish(PreviewSelectedEvent{Width: 1280, Height: 720})
	<-previewReceived

	select {
	case <-stateReceived:
		t.Fatal("State subscriber should NOT have received PreviewSelectedEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	if unsub == nil {
		t.Fatal("expected a no-op unsubscribe function")
	}
	unsub()
}

func TestEventTypesAreDistinct(t *testing.T) {
	all := []Event{
		SessionStateChangedEvent{},
		PreviewSelectedEvent{},
		NoticeEvent{},
		CameraErrorEvent{},
		LogEntryEvent{},
	}
	seen := make(map[uint32]bool)
	for _, ev := range all {
		if seen[ev.Type()] {
			t.Errorf("duplicate event type %d for %T", ev.Type(), ev)
		}
		seen[ev.Type()] = true
	}
}

func TestEventJSONSerialization(t *testing.T) {
	data, err := json.Marshal(PreviewSelectedEvent{CameraID: "/dev/video0", Width: 1280, Height: 720, Rotation: 90})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"camera_id", "width", "height", "rotation", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing JSON key %q in %s", key, data)
		}
	}
}

func TestSessionStateChangedEvent_Interface(t *testing.T) {
	var ev interface{ GetState() string } = SessionStateChangedEvent{To: "streaming"}
	if ev.GetState() != "streaming" {
		t.Errorf("GetState() = %q, want streaming", ev.GetState())
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 1)

	unsub := SubscribeToChannel[NoticeEvent](bus, ch)
	defer unsub()

	bus.Publish(NoticeEvent{Text: "hello"})

	select {
	case got := <-ch:
		if n, ok := got.(NoticeEvent); !ok || n.Text != "hello" {
			t.Errorf("unexpected event %#v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered to channel")
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any) // unbuffered, nobody reading

	unsub := SubscribeToChannel[NoticeEvent](bus, ch)
	defer unsub()

	bus.Publish(NoticeEvent{Text: "dropped"})
	bus.Publish(NoticeEvent{Text: "dropped"})
}
