package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *logger.ZapLogger {
	return logger.NewFromZap(zap.NewNop())
}

func TestNewGracefulServer_DefaultTimeout(t *testing.T) {
	gs := NewGracefulServer(echo.New(), testLogger(), 8080, 0)

	require.NotNil(t, gs)
	assert.Equal(t, 30*time.Second, gs.shutdownTimeout)
}

func TestGracefulServer_StartStopsOnContextCancel(t *testing.T) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	gs := NewGracefulServer(e, testLogger(), 0, time.Second)

	var cleaned bool
	gs.OnShutdown(func(ctx context.Context) error {
		cleaned = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, cleaned)
}

func TestShutdownManager_RunsInOrder(t *testing.T) {
	sm := NewShutdownManager(testLogger())
	var order []int
	var mu sync.Mutex

	for i := 0; i < 5; i++ {
		index := i
		sm.Register(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, index)
			mu.Unlock()
			return nil
		})
	}

	assert.NoError(t, sm.Shutdown(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestShutdownManager_ContinuesAfterError(t *testing.T) {
	sm := NewShutdownManager(testLogger())
	secondCalled := false

	sm.Register(func(ctx context.Context) error { return errors.New("redis close failed") })
	sm.Register(func(ctx context.Context) error {
		secondCalled = true
		return nil
	})

	assert.NoError(t, sm.Shutdown(context.Background()))
	assert.True(t, secondCalled)
}

func TestShutdownManager_IgnoresNil(t *testing.T) {
	sm := NewShutdownManager(testLogger())

	assert.NotPanics(t, func() { sm.Register(nil) })
	assert.NoError(t, sm.Shutdown(context.Background()))
}

func TestShutdownManager_ConcurrentRegister(t *testing.T) {
	sm := NewShutdownManager(testLogger())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sm.Register(func(ctx context.Context) error { return nil })
		}()
	}
	wg.Wait()

	assert.Len(t, sm.functions, 20)
}
