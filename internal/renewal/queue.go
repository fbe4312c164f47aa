package renewal

import (
	"context"
	"sync"

	"github.com/linkly/client-go/internal/api"
)

// waiter is one caller blocked on the outcome of the current renewal cycle.
// req is nil for explicit renewals, which have nothing to replay.
type waiter struct {
	ctx  context.Context
	req  *api.Request
	done chan struct{}
	once sync.Once
	resp *api.Response
	err  error
}

func newWaiter(ctx context.Context, req *api.Request) *waiter {
	return &waiter{
		ctx:  ctx,
		req:  req,
		done: make(chan struct{}),
	}
}

// resolve completes the waiter. Only the first call has any effect.
func (w *waiter) resolve(resp *api.Response, err error) {
	w.once.Do(func() {
		w.resp = resp
		w.err = err
		close(w.done)
	})
}

// pendingQueue holds the waiters of one renewing cycle in arrival order.
// It is not safe for concurrent use; the coordinator guards it.
type pendingQueue struct {
	waiters []*waiter
}

func (q *pendingQueue) push(w *waiter) {
	q.waiters = append(q.waiters, w)
}

// drain removes and returns every queued waiter.
func (q *pendingQueue) drain() []*waiter {
	out := q.waiters
	q.waiters = nil
	return out
}

// remove drops w from the queue, reporting whether it was still queued.
func (q *pendingQueue) remove(w *waiter) bool {
	for i, queued := range q.waiters {
		if queued == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return true
		}
	}
	return false
}

func (q *pendingQueue) len() int {
	return len(q.waiters)
}
