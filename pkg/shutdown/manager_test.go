package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestManager_ShutdownReverseOrder(t *testing.T) {
	sm := NewManager(zaptest.NewLogger(t), time.Second)

	var order []string
	sm.RegisterNoErr("metrics", func() { order = append(order, "metrics") })
	sm.RegisterNoErr("rate_limiter", func() { order = append(order, "rate_limiter") })
	sm.RegisterNoErr("http", func() { order = append(order, "http") })

	require.NoError(t, sm.Shutdown())
	assert.Equal(t, []string{"http", "rate_limiter", "metrics"}, order)
}

func TestManager_CollectsErrorsAndContinues(t *testing.T) {
	sm := NewManager(zaptest.NewLogger(t), time.Second)

	ran := false
	sm.RegisterNoErr("first", func() { ran = true })
	sm.Register("second", func(context.Context) error { return errors.New("boom") })

	err := sm.Shutdown()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "second: boom")
	assert.True(t, ran, "a failing component does not stop the rest")
}

func TestManager_ShutdownOnce(t *testing.T) {
	sm := NewManager(zaptest.NewLogger(t), time.Second)

	calls := 0
	sm.RegisterNoErr("c", func() { calls++ })

	require.NoError(t, sm.Shutdown())
	require.NoError(t, sm.Shutdown())
	assert.Equal(t, 1, calls)
}

func TestManager_SharesTimeout(t *testing.T) {
	sm := NewManager(zaptest.NewLogger(t), 50*time.Millisecond)

	sm.RegisterHTTPServer("http", shutdownerFunc(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		return nil
	}))

	require.NoError(t, sm.Shutdown())
}

func TestManager_WaitForSignalContextDone(t *testing.T) {
	sm := NewManager(zaptest.NewLogger(t), time.Second)
	called := false
	sm.RegisterNoErr("c", func() { called = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sm.WaitForSignal(ctx))
	assert.True(t, called)
}

type shutdownerFunc func(ctx context.Context) error

func (f shutdownerFunc) Shutdown(ctx context.Context) error { return f(ctx) }
