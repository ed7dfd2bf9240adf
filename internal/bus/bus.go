package bus

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config controls subscriber buffering.
//   - BufferSize: per-subscriber channel size (default 16).
//   - Logger: optional structured logger used for drop warnings.
type Config struct {
	BufferSize int
	Logger     *zap.Logger
}

const (
	defaultBufferSize = 16
	dropLogInterval   = 5 * time.Second
)

// Publisher sends events without waiting for any listener.
type Publisher interface {
	Publish(evt Event)
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

// Bus fans every published event out to all active subscribers. Delivery is
// at-most-once: Publish never blocks, and a subscriber whose buffer is full
// misses the event. There is no acknowledgment or retry.
type Bus struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	closed bool

	dropped     atomic.Int64
	dropLimiter rateLimiter
}

func New(cfg Config) *Bus {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bus{
		cfg:         cfg,
		logger:      logger,
		subs:        make(map[uint64]chan Event),
		dropLimiter: rateLimiter{interval: dropLogInterval},
	}
}

// Publish delivers evt to every subscriber that has room for it.
func (b *Bus) Publish(evt Event) {
	if b == nil || evt == nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	b.logger.Debug("publishing event", zap.String("type", string(evt.Type())), zap.Int("subscribers", len(b.subs)))

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
			if b.dropLimiter.Allow(time.Now()) {
				b.logger.Warn("bus events dropped due to slow subscriber",
					zap.String("type", string(evt.Type())),
					zap.Int64("dropped", b.dropped.Swap(0)),
				)
			}
		}
	}
}

// Subscribe registers a listener. The returned function unsubscribes and closes
// the channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.cfg.BufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Subscribers returns the number of active listeners.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops delivery and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

type rateLimiter struct {
	interval time.Duration
	last     atomic.Int64
}

func (r *rateLimiter) Allow(now time.Time) bool {
	if r == nil || r.interval <= 0 {
		return true
	}
	nano := now.UnixNano()
	last := r.last.Load()
	if nano-last < r.interval.Nanoseconds() {
		return false
	}
	return r.last.CompareAndSwap(last, nano)
}
