package unit

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerUnit_DeliverRunsClosuresInOrder(t *testing.T) {
	w := newWorkerUnit(Spec{Kind: "k", Arg: "a"}, "node-a", nil, slog.Default(), nil)
	defer w.Stop()

	var order []int32
	var next int32
	for i := int32(0); i < 5; i++ {
		i := i
		require.NoError(t, w.Deliver(context.Background(), func(context.Context, any) error {
			order = append(order, i)
			atomic.AddInt32(&next, 1)
			return nil
		}))
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&next) == 5 }, time.Second, time.Millisecond)
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, order)
}

func TestWorkerUnit_PanicInClosureCrashesTheWorker(t *testing.T) {
	w := newWorkerUnit(Spec{Kind: "k", Arg: "a"}, "node-a", nil, slog.Default(), nil)
	defer w.Stop()

	require.NoError(t, w.Deliver(context.Background(), func(context.Context, any) error {
		panic("boom")
	}))

	assert.Eventually(t, func() bool { return !w.Alive() }, time.Second, time.Millisecond,
		"a panicking closure must terminate the worker's run loop")

	err := w.Deliver(context.Background(), func(context.Context, any) error { return nil })
	assert.Error(t, err, "a crashed worker must refuse further deliveries")
}

func TestWorkerUnit_DeliverAfterStopFails(t *testing.T) {
	w := newWorkerUnit(Spec{Kind: "k", Arg: "a"}, "node-a", nil, slog.Default(), nil)
	w.Stop()

	err := w.Deliver(context.Background(), func(context.Context, any) error { return nil })
	assert.Error(t, err)
}

func TestWorkerUnit_ClosureErrorIsLoggedNotReturnedToCaller(t *testing.T) {
	w := newWorkerUnit(Spec{Kind: "k", Arg: "a"}, "node-a", nil, slog.Default(), nil)
	defer w.Stop()

	err := w.Deliver(context.Background(), func(context.Context, any) error {
		return errors.New("closure failed")
	})
	assert.NoError(t, err, "Deliver only reports enqueue failures, not the closure's own result")
}
