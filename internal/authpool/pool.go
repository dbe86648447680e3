// Package authpool dispatches SessionAuthenticator's blocking HTTPS call
// to concurrency-bounded worker goroutines so it never stalls the
// connection goroutine that submitted it (spec.md §5: "must be dispatched
// to a worker thread"). The job queue is a github.com/gammazero/deque.Deque,
// used the same direct-field way the teacher's clientPlaySessionHandler
// uses one for loginPluginMessages; in-flight concurrency is capped with
// golang.org/x/sync/semaphore so a burst of logins can't open unbounded
// concurrent connections to the session service.
package authpool

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
	"golang.org/x/sync/semaphore"
)

// job is a unit of work submitted to the pool. run is executed on a
// worker goroutine; its outcome is sent once on result, the channel
// Submit returned.
type job struct {
	run    func(ctx context.Context) (interface{}, error)
	ctx    context.Context
	result chan result
}

type result struct {
	val interface{}
	err error
}

// Pool runs each submitted job on its own goroutine; a semaphore lets at
// most the configured number of them run at once.
type Pool struct {
	sem *semaphore.Weighted

	mu     sync.Mutex
	cond   *sync.Cond
	queue  deque.Deque
	closed bool
}

// New starts a pool that allows at most concurrency jobs to run at once.
func New(concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	p := &Pool{sem: semaphore.NewWeighted(int64(concurrency))}
	p.cond = sync.NewCond(&p.mu)
	go p.dispatchLoop()
	return p
}

// Submit enqueues fn and returns a future-like channel delivering its
// result. The caller's goroutine blocks on the channel, not on fn itself,
// so a cancelled ctx still lets the caller stop waiting even though the
// worker (once it acquires a slot) runs fn to completion.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) <-chan result {
	ch := make(chan result, 1)
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		ch <- result{err: context.Canceled}
		return ch
	}
	p.queue.PushBack(job{run: fn, ctx: ctx, result: ch})
	p.mu.Unlock()
	p.cond.Signal()
	return ch
}

// Do submits fn and blocks until it completes or ctx is cancelled,
// whichever happens first.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := p.Submit(ctx, fn)
	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the pool from accepting new jobs. In-flight jobs run to completion.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

func (p *Pool) dispatchLoop() {
	for {
		p.mu.Lock()
		for p.queue.Len() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.queue.Len() == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		j := p.queue.PopFront().(job)
		p.mu.Unlock()

		go p.run(j)
	}
}

func (p *Pool) run(j job) {
	if err := p.sem.Acquire(j.ctx, 1); err != nil {
		j.result <- result{err: err}
		return
	}
	defer p.sem.Release(1)

	val, err := j.run(j.ctx)
	j.result <- result{val: val, err: err}
}
