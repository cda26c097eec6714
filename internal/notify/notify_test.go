package notify

import (
	"testing"

	"go.uber.org/zap"
)

func TestBroadcaster_CoalescesPendingSignals(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Notify()
	b.Notify()
	b.Notify()

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending signal")
	}
	select {
	case <-ch:
		t.Fatal("signals were not coalesced")
	default:
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	ch, unsubscribe := b.Subscribe()
	other, unsubscribeOther := b.Subscribe()
	defer unsubscribeOther()

	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}

	b.Notify()
	select {
	case <-other:
	default:
		t.Error("remaining subscriber was not signalled")
	}
}
