package notify

import (
	"context"
	"testing"
	"time"
)

func TestPublishReachesEverySubscriberOnce(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(context.Background(), StreamChange{SessionID: "s1", StreamID: "a", Epoch: 1})

	for i, ch := range []<-chan StreamChange{ch1, ch2} {
		select {
		case got := <-ch:
			if got.SessionID != "s1" || got.StreamID != "a" || got.Epoch != 1 {
				t.Errorf("sub %d got %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("sub %d never received", i)
		}
		select {
		case got := <-ch:
			t.Errorf("sub %d got duplicate %+v", i, got)
		default:
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ch, cancel := b.Subscribe()
	cancel()

	// Channel closes on cancel and the publish does not panic.
	b.Publish(context.Background(), StreamChange{SessionID: "s1", StreamID: "a", Epoch: 1})
	if _, ok := <-ch; ok {
		t.Error("received on cancelled subscription")
	}

	cancel() // second cancel is a no-op
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Well past the buffer size; nobody is draining.
		for i := 0; i < 100; i++ {
			b.Publish(context.Background(), StreamChange{SessionID: "s1", Epoch: int64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	// The earliest messages are still there; overflow was dropped.
	got := <-ch
	if got.Epoch != 0 {
		t.Errorf("first buffered message epoch = %d, want 0", got.Epoch)
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := NewBroadcaster(nil)
	ch, _ := b.Subscribe()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("channel open after Close")
	}
	// Publish after Close is a no-op.
	b.Publish(context.Background(), StreamChange{SessionID: "s1"})
}
