package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusTopicFilterAndOrder(t *testing.T) {
	bus := NewBus(8)
	all := bus.Subscribe()
	samples := bus.Subscribe(TopicSamples)
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, Event{Topic: TopicState, State: StateConnecting}))
	require.NoError(t, bus.Publish(ctx, Event{Topic: TopicSamples, Generation: 1}))
	require.NoError(t, bus.Publish(ctx, Event{Topic: TopicSamples, Generation: 2}))

	assert.Equal(t, TopicState, (<-all.C()).Topic)
	assert.Equal(t, uint64(1), (<-all.C()).Generation)
	assert.Equal(t, uint64(2), (<-all.C()).Generation)

	assert.Equal(t, uint64(1), (<-samples.C()).Generation)
	assert.Equal(t, uint64(2), (<-samples.C()).Generation)
	select {
	case ev := <-samples.C():
		t.Fatalf("unexpected event %v", ev.Topic)
	default:
	}
}

func TestBusUnsubscribeOnce(t *testing.T) {
	bus := NewBus(1)
	sub := bus.Subscribe()
	assert.Equal(t, 1, bus.Len())

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 0, bus.Len())

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed after Unsubscribe")
	}
}

func TestBusPublishUnblocksOnUnsubscribe(t *testing.T) {
	bus := NewBus(1)
	sub := bus.Subscribe()
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, Event{Topic: TopicRaw}))

	published := make(chan error, 1)
	go func() { published <- bus.Publish(ctx, Event{Topic: TopicRaw}) }()

	select {
	case <-published:
		t.Fatal("publish to a full subscriber returned early")
	case <-time.After(20 * time.Millisecond):
	}

	sub.Unsubscribe()
	select {
	case err := <-published:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish still blocked after unsubscribe")
	}
}

func TestBusPublishHonoursContext(t *testing.T) {
	bus := NewBus(1)
	bus.Subscribe()
	require.NoError(t, bus.Publish(context.Background(), Event{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Publish(ctx, Event{}), context.DeadlineExceeded)
}

func TestBusClose(t *testing.T) {
	bus := NewBus(1)
	sub := bus.Subscribe()
	bus.Close()

	<-sub.Done()
	assert.Equal(t, 0, bus.Len())
	assert.NoError(t, bus.Publish(context.Background(), Event{}))

	late := bus.Subscribe()
	<-late.Done()
	late.Unsubscribe()
}

func TestBusLossySubscriberNeverBlocks(t *testing.T) {
	bus := NewBus(8)
	raw := bus.SubscribeLossy(TopicRaw)
	samples := bus.Subscribe(TopicSamples)
	ctx := context.Background()

	received := make(chan int)
	go func() {
		n := 0
		for n < 50 {
			<-samples.C()
			n++
		}
		received <- n
	}()

	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < 50; i++ {
			assert.NoError(t, bus.Publish(ctx, Event{Topic: TopicRaw}))
			assert.NoError(t, bus.Publish(ctx, Event{Topic: TopicSamples, Generation: uint64(i)}))
		}
	}()

	select {
	case n := <-received:
		assert.Equal(t, 50, n)
	case <-time.After(2 * time.Second):
		t.Fatal("samples subscriber starved by an undrained raw subscriber")
	}
	<-published

	assert.Len(t, raw.C(), 8)
	assert.Equal(t, int64(42), raw.Dropped())
	assert.Equal(t, int64(0), samples.Dropped())
}
