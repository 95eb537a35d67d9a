package gate_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/programme-lv/contester/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameKeyIsExclusive(t *testing.T) {
	g := gate.New()
	key := gate.Key{ContestID: 1, CompetitorID: 5}

	var inside, maxInside atomic.Int32
	counter := 0

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.WithLock(context.Background(), key, func() error {
				n := inside.Add(1)
				for {
					m := maxInside.Load()
					if n <= m || maxInside.CompareAndSwap(m, n) {
						break
					}
				}
				counter++
				time.Sleep(100 * time.Microsecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, g.Len())
}

func TestDistinctKeysDoNotBlock(t *testing.T) {
	g := gate.New()
	held := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = g.WithLock(context.Background(), gate.Key{ContestID: 1, CompetitorID: 1}, func() error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ran := false
	err := g.WithLock(ctx, gate.Key{ContestID: 1, CompetitorID: 2}, func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, g.Len())

	close(done)
	require.Eventually(t, func() bool { return g.Len() == 0 }, time.Second, time.Millisecond)
}

func TestWaitHonoursContext(t *testing.T) {
	g := gate.New()
	key := gate.Key{ContestID: 3, CompetitorID: 3}
	held := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = g.WithLock(context.Background(), key, func() error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.WithLock(ctx, key, func() error {
		t.Error("critical section must not run")
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(done)
	require.Eventually(t, func() bool { return g.Len() == 0 }, time.Second, time.Millisecond)
}

func TestReleasedOnErrorAndPanic(t *testing.T) {
	g := gate.New()
	key := gate.Key{ContestID: 1, CompetitorID: 1}
	boom := errors.New("boom")

	err := g.WithLock(context.Background(), key, func() error { return boom })
	require.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_ = g.WithLock(context.Background(), key, func() error { panic("boom") })
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.WithLock(ctx, key, func() error { return nil }))
	assert.Equal(t, 0, g.Len())
}
