package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/banshee-data/beacon.scope/internal/beacon"
	"github.com/banshee-data/beacon.scope/internal/timeutil"
)

// SyntheticHeader is the field list the synthetic device reports.
var SyntheticHeader = beacon.Header{
	beacon.FieldTime, beacon.FieldDist, beacon.FieldFreq,
	beacon.FieldPos, beacon.FieldTemp, beacon.FieldVel,
}

// SyntheticDialer connects to an in-process imitation of a Beacon probe. It
// answers beacon/dump with a header and then streams a batch of rows every
// Interval. Every OutOfRangeEvery-th row reports an out of range distance as
// a bare Infinity token, the way the device does.
type SyntheticDialer struct {
	Clock           timeutil.Clock
	Interval        time.Duration
	RowsPerFrame    int
	OutOfRangeEvery int
	// StartTime is the raw device time of the first row.
	StartTime float64
}

// NewSyntheticDialer returns a dialer with demo defaults driven by clock.
func NewSyntheticDialer(clock timeutil.Clock) *SyntheticDialer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &SyntheticDialer{
		Clock:           clock,
		Interval:        50 * time.Millisecond,
		RowsPerFrame:    5,
		OutOfRangeEvery: 97,
		StartTime:       1834.25,
	}
}

func (d *SyntheticDialer) Dial(ctx context.Context, url string) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn := NewMockConn()
	started := false
	conn.OnWrite = func(data []byte) {
		var req beacon.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		if req.Method != beacon.MethodDump {
			conn.Push(fmt.Sprintf(`{"id":%d,"error":{"message":"Unknown endpoint %s"}}`, req.ID, req.Method))
			return
		}
		header, _ := json.Marshal(SyntheticHeader)
		conn.Push(fmt.Sprintf(`{"id":%d,"result":{"header":%s}}`, req.ID, header))
		if !started {
			started = true
			go d.run(conn)
		}
	}
	return conn, nil
}

// run streams rows until conn is closed, like the mock serial port's ticker
// loop.
func (d *SyntheticDialer) run(conn *MockConn) {
	ticker := d.Clock.NewTicker(d.Interval)
	defer ticker.Stop()

	step := d.Interval.Seconds() / float64(max(d.RowsPerFrame, 1))
	n := 0
	for {
		select {
		case <-conn.closed:
			return
		case <-ticker.C():
		}

		rows := make([]string, 0, d.RowsPerFrame)
		for i := 0; i < d.RowsPerFrame; i++ {
			rows = append(rows, d.row(n, d.StartTime+float64(n)*step))
			n++
		}
		select {
		case conn.in <- mockFrame{data: []byte(`{"params":[` + strings.Join(rows, ",") + `]}`)}:
		case <-conn.closed:
			return
		}
	}
}

func (d *SyntheticDialer) row(n int, t float64) string {
	phase := t * 2 * math.Pi / 4
	dist := fmt.Sprintf("%.5f", 2.75+1.5*math.Sin(phase)+0.05*math.Sin(phase*11))
	if d.OutOfRangeEvery > 0 && n%d.OutOfRangeEvery == d.OutOfRangeEvery-1 {
		dist = "Infinity"
	}
	freq := 4.8e6 - 2e5*math.Sin(phase)
	x, y := 110+40*math.Cos(phase/3), 110+40*math.Sin(phase/3)
	z := 2 + 1.5*math.Sin(phase)
	temp := 42 + 0.5*math.Sin(t/60)
	vel := 1.5 * math.Cos(phase) * 2 * math.Pi / 4
	return fmt.Sprintf("[%.4f,%s,%.1f,[%.3f,%.3f,%.3f],%.2f,%.4f]", t, dist, freq, x, y, z, temp, vel)
}
