package pipeline

import (
	"context"
	"sync"

	"github.com/biosonic-labs/dna2music-api/internal/logger"
)

// Queue is an unbounded FIFO of job ids. Push never blocks; excess
// submissions simply queue, which is the documented baseline behavior.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []string
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a job id. Pushing to a closed queue is a no-op.
func (q *Queue) Push(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, id)
	q.cond.Signal()
}

// Pop blocks until an item is available or the queue is closed. The second
// return value is false once the queue is closed and drained.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return "", false
	}
	id := q.items[0]
	q.items = q.items[1:]
	return id, true
}

// Close stops accepting pushes and wakes all blocked consumers. Items
// already queued are still handed out, so a stopping pool drains its
// backlog before exiting.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Len reports the number of queued job ids
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pool runs N workers over the pipeline queue. Workers run in parallel
// across jobs; the store-level claim keeps each job single-owner. There is
// no cancellation of a claimed job; it runs to a terminal state.
type Pool struct {
	pipeline *Pipeline
	workers  int
	wg       sync.WaitGroup
}

func NewPool(p *Pipeline, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{pipeline: p, workers: workers}
}

// Start launches the workers. They exit when the queue is closed.
func (pl *Pool) Start(ctx context.Context) {
	for i := 0; i < pl.workers; i++ {
		pl.wg.Add(1)
		go func(worker int) {
			defer pl.wg.Done()
			for {
				id, ok := pl.pipeline.queue.Pop()
				if !ok {
					return
				}
				if err := pl.pipeline.Process(ctx, id); err != nil {
					// Orchestrator-level failures (store unreachable etc.)
					// are logged and the worker keeps serving other jobs
					logger.Error("Worker processing error", err, logger.Fields{
						"job_id": id,
						"worker": worker,
					})
				}
			}
		}(i)
	}
}

// Stop closes the queue and waits for the workers to drain it
func (pl *Pool) Stop() {
	pl.pipeline.queue.Close()
	pl.wg.Wait()
}
