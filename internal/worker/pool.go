// Package worker provides a small fixed-size goroutine pool for running
// independent tasks, such as tracking several influencers at once.
package worker

import (
	"context"
	"sync"
)

// Task is one unit of work. Tasks receive the pool's context and must
// return promptly once it is cancelled.
type Task func(ctx context.Context)

// Pool runs queued tasks on a fixed number of goroutines.
type Pool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewPool creates a pool with the given worker count. Counts below one are
// raised to one.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			task(p.ctx)
		}
	}
}

// Submit queues one task. Submissions after cancellation are dropped.
func (p *Pool) Submit(task Task) {
	select {
	case <-p.ctx.Done():
	case p.tasks <- task:
	}
}

// Wait closes the queue and blocks until every queued task has finished.
func (p *Pool) Wait() {
	close(p.tasks)
	p.wg.Wait()
	p.cancel()
}

// Shutdown cancels the pool immediately and waits for running tasks.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
