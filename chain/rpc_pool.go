package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/scorpiotzh/mylog"
	"golang.org/x/sync/semaphore"
)

var log = mylog.NewLogger("chain", mylog.LevelDebug)

// RpcPool funnels chain queries through a fixed concurrency ceiling and
// retries failed calls with doubling backoff. Open subscriptions do not go
// through the pool, only one-shot queries do.
type RpcPool struct {
	sem           *semaphore.Weighted
	maxRetry      int
	retryInterval time.Duration
}

func NewRpcPool(concurrency int64, maxRetry int, retryInterval time.Duration) *RpcPool {
	if concurrency <= 0 {
		concurrency = 10
	}
	if retryInterval <= 0 {
		retryInterval = time.Millisecond * 250
	}
	return &RpcPool{
		sem:           semaphore.NewWeighted(concurrency),
		maxRetry:      maxRetry,
		retryInterval: retryInterval,
	}
}

func (p *RpcPool) Do(ctx context.Context, name string, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("sem.Acquire err: %s", err.Error())
	}
	defer p.sem.Release(1)

	interval := p.retryInterval
	var err error
	for i := 0; ; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i >= p.maxRetry {
			break
		}
		log.Warnf("RpcPool %s retry %d: %s", name, i+1, err.Error())
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
		interval *= 2
	}
	return fmt.Errorf("%s err: %s", name, err.Error())
}
