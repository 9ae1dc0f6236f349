package task_queue

import (
	"fmt"
	"sync"

	"github.com/scorpiotzh/mylog"
)

var log = mylog.NewLogger("task_queue", mylog.LevelDebug)

// TaskQueue runs at most one task per key at a time, in submission order.
// Tasks for different keys run concurrently. Events for one transaction can
// arrive from two independent subscriptions nearly simultaneously; keying the
// queue by the transaction identity is what makes the correlator's
// upgrade-in-place vs append decision race-free.
type TaskQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
	wg    sync.WaitGroup
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{
		tails: make(map[string]chan struct{}),
	}
}

// Enqueue appends fn to the FIFO chain of key and returns a one-shot channel
// carrying fn's result. A failing task rejects only its own caller; later
// tasks for the same key still run.
func (q *TaskQueue) Enqueue(key string, fn func() error) <-chan error {
	res := make(chan error, 1)
	done := make(chan struct{})

	q.mu.Lock()
	prev := q.tails[key]
	q.tails[key] = done
	q.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer func() {
			close(done)
			q.mu.Lock()
			if q.tails[key] == done {
				delete(q.tails, key)
			}
			q.mu.Unlock()
		}()
		if prev != nil {
			<-prev
		}
		res <- q.runTask(key, fn)
	}()
	return res
}

func (q *TaskQueue) runTask(key string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panic:", key, r)
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return fn()
}

// Wait blocks until every task enqueued so far has settled.
func (q *TaskQueue) Wait() {
	q.wg.Wait()
}
