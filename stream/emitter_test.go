package stream

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSliceEmitter_NextLaunchesAtMostNAndTracksExhaustion(t *testing.T) {
	ctx := context.Background()
	sink := &Sink{logger: slog.Default()}
	items := []Element{{Tag: "1"}, {Tag: "2"}, {Tag: "3"}}

	var launched int32
	e := NewSliceEmitter(sink, func(context.Context, *Sink, Element) {
		atomic.AddInt32(&launched, 1)
	}, items)

	n := e.Next(ctx, 2)
	assert.Equal(t, 2, n)

	n = e.Next(ctx, 2)
	assert.Equal(t, 1, n, "only one item left, less than requested means exhausted")

	n = e.Next(ctx, 2)
	assert.Equal(t, 0, n)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&launched) == 3 }, time.Second, time.Millisecond)
}

func TestSliceEmitter_PanicInTaskIsRecovered(t *testing.T) {
	ctx := context.Background()
	sink := &Sink{logger: slog.Default()}
	e := NewSliceEmitter(sink, func(context.Context, *Sink, Element) {
		panic("boom")
	}, []Element{{Tag: "1"}})

	assert.NotPanics(t, func() {
		e.Next(ctx, 1)
		time.Sleep(20 * time.Millisecond)
	})
}
