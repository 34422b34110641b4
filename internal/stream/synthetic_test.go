package stream

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/beacon.scope/internal/timeutil"
)

func TestSyntheticDevice(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(1_700_000_000, 0))
	dialer := NewSyntheticDialer(clock)
	dialer.RowsPerFrame = 4
	dialer.OutOfRangeEvery = 3

	s := NewSession(dialer, Options{})
	defer s.Close()
	sub := s.Subscribe(TopicHeader, TopicSamples, TopicError)
	require.NoError(t, s.Connect(context.Background(), "synthetic://"))

	assert.Equal(t, SyntheticHeader, nextEvent(t, sub, TopicHeader).Header)

	require.Eventually(t, func() bool { return clock.Tickers() == 1 }, time.Second, time.Millisecond)
	clock.Advance(dialer.Interval)

	ev := nextEvent(t, sub, TopicSamples)
	require.Len(t, ev.Samples, 4)
	assert.Equal(t, 0.0, ev.Samples[0].Time)
	assert.True(t, math.IsInf(ev.Samples[2].Dist, 1), "every third row is out of range")
	for i, smp := range ev.Samples {
		assert.NotNil(t, smp.Pos, "row %d", i)
		assert.NotNil(t, smp.Vel, "row %d", i)
		if i > 0 {
			assert.Greater(t, smp.Time, ev.Samples[i-1].Time)
		}
	}

	replies := s.Subscribe(TopicReply)
	require.NoError(t, s.Request("printer.info"))
	reply := nextEvent(t, replies, TopicReply)
	assert.Equal(t, "printer.info", reply.Method)
	assert.Contains(t, reply.Reply.Err().Error(), "Unknown endpoint printer.info")
	assert.True(t, s.Status().State.Active(), "a rejected request leaves the stream running")
}
