package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Broadcaster fans out "something changed" signals to subscribers.
// Each subscriber channel holds at most one pending signal; a reader that
// falls behind sees a single coalesced signal and re-reads current state.
type Broadcaster struct {
	logger          *zap.Logger
	mu              sync.Mutex
	nextID          int
	subs            map[int]chan struct{}
	lastDropWarning time.Time
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger,
		subs:   make(map[int]chan struct{}),
	}
}

// Subscribe registers a listener. The returned function unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Notify signals every subscriber without blocking
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
			// A signal is already pending for this subscriber
			b.logCoalesced()
		}
	}
}

// logCoalesced is rate limited to avoid log spam during rapid updates (polls + slider drags)
func (b *Broadcaster) logCoalesced() {
	const warningInterval = 5 * time.Second
	now := time.Now()
	if now.Sub(b.lastDropWarning) >= warningInterval {
		b.logger.Debug("Subscriber still has a pending change signal, coalescing")
		b.lastDropWarning = now
	}
}
