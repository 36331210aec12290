package protocol

import (
	"testing"
	"time"

	"github.com/tattoy-go/tattoy/pkg/surface"
)

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch1, unsub1 := b.Subscribe()
	ch2, unsub2 := b.Subscribe()
	defer unsub1()
	defer unsub2()

	b.Publish(NewRepaint())

	for _, ch := range []<-chan Message{ch1, ch2} {
		select {
		case msg := <-ch:
			if msg.Kind != KindRepaint {
				t.Errorf("expected KindRepaint, got %v", msg.Kind)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast message")
		}
	}
}

func TestBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch, unsub := b.Subscribe()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", b.SubscriberCount())
	}
}

func TestBroadcasterDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroadcaster()
	_, unsub := b.Subscribe()
	defer unsub()

	for i := 0; i < BroadcastCapacity+10; i++ {
		b.Publish(NewRepaint())
	}
}

func TestFrameChannelSendAndRecv(t *testing.T) {
	fc := NewFrameChannel()
	update := NewTattoySurfaceUpdate(surface.New("test", 1, 1, 1, 1.0))

	if !fc.Send(update) {
		t.Fatal("expected send to succeed on an empty channel")
	}
	if fc.Backlog() != 1 {
		t.Errorf("expected backlog 1, got %d", fc.Backlog())
	}

	got := <-fc.Recv()
	if got.Surface.ID != "test" {
		t.Errorf("expected surface 'test', got %q", got.Surface.ID)
	}
}

func TestFrameChannelDropsWhenFull(t *testing.T) {
	fc := NewFrameChannel()
	update := NewPTYSurfaceUpdate()

	for i := 0; i < FrameChannelCapacity; i++ {
		if !fc.Send(update) {
			t.Fatalf("unexpected drop at index %d", i)
		}
	}
	if fc.Send(update) {
		t.Error("expected send to fail once the channel is full")
	}
}

func TestFrameUpdateIsRemoval(t *testing.T) {
	removal := NewTattoySurfaceUpdate(surface.New("test", 0, 0, 1, 1.0))
	if !removal.IsRemoval() {
		t.Error("expected zero-size surface update to be a removal")
	}

	normal := NewTattoySurfaceUpdate(surface.New("test", 5, 5, 1, 1.0))
	if normal.IsRemoval() {
		t.Error("expected normal-size surface update to not be a removal")
	}

	pty := NewPTYSurfaceUpdate()
	if pty.IsRemoval() {
		t.Error("expected a PTYSurface update to never be a removal")
	}
}
