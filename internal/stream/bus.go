package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/banshee-data/beacon.scope/internal/beacon"
)

// Topic selects which events a subscriber receives.
type Topic int

const (
	// TopicState carries lifecycle transitions, including connected and
	// disconnected.
	TopicState Topic = iota
	TopicError
	TopicHeader
	TopicSamples
	// TopicRaw carries every inbound frame before decoding.
	TopicRaw
	// TopicReply carries replies to requests sent with Session.Request,
	// other than the sample dump.
	TopicReply
)

func (t Topic) String() string {
	switch t {
	case TopicState:
		return "state"
	case TopicError:
		return "error"
	case TopicHeader:
		return "header"
	case TopicSamples:
		return "samples"
	case TopicRaw:
		return "raw"
	case TopicReply:
		return "reply"
	}
	return "unknown"
}

// Event is one bus message. Generation identifies the Connect call that
// produced it.
type Event struct {
	Topic      Topic
	Generation uint64

	State   State
	Err     error
	Header  beacon.Header
	Samples []beacon.Sample
	Raw     []byte

	Reply  beacon.Reply
	Method string
}

// DefaultSubscriberBuffer is the channel depth used when none is configured.
const DefaultSubscriberBuffer = 64

// Bus fans events out to subscribers in publish order. A subscription made
// with Subscribe blocks the publisher until it takes the event or leaves, so
// it never misses one. A subscription made with SubscribeLossy drops events
// while its channel is full.
type Bus struct {
	buffer int

	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	closed bool

	publishMu sync.Mutex
}

// NewBus returns a bus whose subscriber channels hold buffer events.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Bus{
		buffer: buffer,
		subs:   make(map[uuid.UUID]*Subscription),
	}
}

// Subscription is one consumer's registration. Unsubscribe is safe to call
// any number of times; only the first call has an effect.
type Subscription struct {
	id     uuid.UUID
	bus    *Bus
	topics map[Topic]bool
	ch     chan Event
	done   chan struct{}
	once   sync.Once

	lossy   bool
	dropped atomic.Int64
}

// ID returns the subscription id.
func (s *Subscription) ID() uuid.UUID { return s.id }

// C returns the event channel. It is never closed; select on Done as well.
func (s *Subscription) C() <-chan Event { return s.ch }

// Done is closed once the subscription ends, either through Unsubscribe or
// because the bus was closed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Dropped returns how many events a lossy subscription has missed.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.bus.remove(s.id)
	})
}

func (s *Subscription) wants(t Topic) bool {
	return len(s.topics) == 0 || s.topics[t]
}

// Subscribe registers for the given topics, or all topics when none are
// named. Subscribing to a closed bus returns an already finished
// subscription.
func (b *Bus) Subscribe(topics ...Topic) *Subscription {
	return b.subscribe(false, topics)
}

// SubscribeLossy is Subscribe for observers that must never hold up the
// session, such as debug tails. Events that find the channel full are
// dropped and counted.
func (b *Bus) SubscribeLossy(topics ...Topic) *Subscription {
	return b.subscribe(true, topics)
}

func (b *Bus) subscribe(lossy bool, topics []Topic) *Subscription {
	sub := &Subscription{
		id:    uuid.New(),
		bus:   b,
		ch:    make(chan Event, b.buffer),
		done:  make(chan struct{}),
		lossy: lossy,
	}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			sub.topics[t] = true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.once.Do(func() { close(sub.done) })
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers ev to every interested subscriber. It returns ctx.Err()
// if the context ended before delivery to a blocking subscriber finished.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.wants(ev.Topic) {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		if s.lossy {
			select {
			case s.ch <- ev:
			default:
				s.dropped.Add(1)
			}
			continue
		}
		select {
		case s.ch <- ev:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close ends every subscription. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[uuid.UUID]*Subscription)
	b.closed = true
	b.mu.Unlock()

	for _, s := range subs {
		s.once.Do(func() { close(s.done) })
	}
}
