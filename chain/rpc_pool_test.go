package chain

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRpcPoolRetry(t *testing.T) {
	p := NewRpcPool(2, 3, time.Millisecond)
	calls := 0
	err := p.Do(context.Background(), "flaky", func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRpcPoolRetryExhausted(t *testing.T) {
	p := NewRpcPool(2, 2, time.Millisecond)
	calls := 0
	err := p.Do(context.Background(), "down", func() error {
		calls++
		return fmt.Errorf("refused")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "down err")
}

func TestRpcPoolConcurrencyCeiling(t *testing.T) {
	p := NewRpcPool(2, 0, time.Millisecond)
	var cur, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), "probe", func() error {
				n := atomic.AddInt32(&cur, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(time.Millisecond * 20)
				atomic.AddInt32(&cur, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRpcPoolContextCancelled(t *testing.T) {
	p := NewRpcPool(1, 5, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, "stuck", func() error {
			return fmt.Errorf("always")
		})
	}()
	time.Sleep(time.Millisecond * 20)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancel")
	}
}
