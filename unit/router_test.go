package unit

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbrw/adap/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, ttl time.Duration) (*Router, *cluster.Node) {
	t.Helper()
	node := cluster.NewNode("node-a", cluster.NewLocalTransport(), 4)
	r, err := NewRouter(context.Background(), "node-a", node, ttl, nil)
	require.NoError(t, err)
	return r, node
}

func TestRouter_CastStartsAWorkerOnce(t *testing.T) {
	r, _ := newTestRouter(t, time.Hour)
	kindName := fmt.Sprintf("kind-%s", t.Name())
	handlerName := fmt.Sprintf("handler-%s", t.Name())

	var starts int32
	require.NoError(t, RegisterKind(kindName, NewSimpleKind([]string{"node-a"}, func(context.Context, string) (any, error) {
		atomic.AddInt32(&starts, 1)
		return "state", nil
	})))

	var calls int32
	require.NoError(t, RegisterHandler(handlerName, func(ctx context.Context, state any, payload []byte) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "state", state)
		return nil, nil
	}))

	for i := 0; i < 10; i++ {
		require.NoError(t, r.Cast(context.Background(), Spec{Kind: kindName, Arg: "x"}, handlerName, []byte("payload")))
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 10 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&starts), "repeated casts for the same spec reuse one started worker")
}

func TestRouter_CastUnknownKindFails(t *testing.T) {
	r, _ := newTestRouter(t, time.Hour)
	err := r.Cast(context.Background(), Spec{Kind: "no-such-kind", Arg: "x"}, "handler", nil)
	assert.Error(t, err)
}

func TestRouter_WorkerStartFailureIsReportedSynchronously(t *testing.T) {
	r, _ := newTestRouter(t, time.Hour)
	kindName := fmt.Sprintf("kind-%s", t.Name())
	require.NoError(t, RegisterKind(kindName, NewSimpleKind([]string{"node-a"}, func(context.Context, string) (any, error) {
		return nil, fmt.Errorf("start failed")
	})))

	err := r.Cast(context.Background(), Spec{Kind: kindName, Arg: "x"}, "handler", nil)
	assert.Error(t, err)
}

func TestRouter_IdleWorkerIsEvictedAfterTTL(t *testing.T) {
	r, _ := newTestRouter(t, 30*time.Millisecond)
	kindName := fmt.Sprintf("kind-%s", t.Name())
	handlerName := fmt.Sprintf("handler-%s", t.Name())

	var starts int32
	require.NoError(t, RegisterKind(kindName, NewSimpleKind([]string{"node-a"}, func(context.Context, string) (any, error) {
		atomic.AddInt32(&starts, 1)
		return nil, nil
	})))
	require.NoError(t, RegisterHandler(handlerName, func(context.Context, any, []byte) ([]byte, error) { return nil, nil }))

	require.NoError(t, r.Cast(context.Background(), Spec{Kind: kindName, Arg: "x"}, handlerName, nil))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&starts) == 1 }, time.Second, time.Millisecond)

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, r.Cast(context.Background(), Spec{Kind: kindName, Arg: "x"}, handlerName, nil))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&starts) == 2 }, time.Second, time.Millisecond, "worker should have been evicted and restarted")
}

// TestRouter_WorkerCrashStartsAFreshWorkerOnTheNextCast is scenario S6:
// a worker that crashes processing its 2nd delivery must actually die,
// and the cast that follows must see no live worker for that Spec and
// start a brand-new one rather than reusing the corpse (spec §4.5/§7/§8).
func TestRouter_WorkerCrashStartsAFreshWorkerOnTheNextCast(t *testing.T) {
	r, _ := newTestRouter(t, time.Hour)
	kindName := fmt.Sprintf("kind-%s", t.Name())
	handlerName := fmt.Sprintf("handler-%s", t.Name())

	var starts int32
	require.NoError(t, RegisterKind(kindName, NewSimpleKind([]string{"node-a"}, func(context.Context, string) (any, error) {
		atomic.AddInt32(&starts, 1)
		return nil, nil
	})))

	var calls int32
	require.NoError(t, RegisterHandler(handlerName, func(context.Context, any, []byte) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 2 {
			panic("boom")
		}
		return nil, nil
	}))

	spec := Spec{Kind: kindName, Arg: "x"}
	key := kindName + ":x"

	require.NoError(t, r.Cast(context.Background(), spec, handlerName, nil))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&starts) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, r.Cast(context.Background(), spec, handlerName, nil))
	assert.Eventually(t, func() bool {
		w, ok := r.workers.Get(key)
		return ok && !w.Alive()
	}, time.Second, time.Millisecond, "worker should have crashed on its 2nd delivery")

	require.NoError(t, r.Cast(context.Background(), spec, handlerName, nil))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&starts) == 2 }, time.Second, time.Millisecond, "3rd cast should have started a brand-new worker")
}
