package orchestrator

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// jobQueue is a blocking priority queue of job IDs. Higher priority rank
// dequeues first; within one rank, jobs dequeue in enqueue order.
type jobQueue struct {
	items  *entryHeap
	ids    map[string]struct{}
	mu     sync.Mutex
	cond   *sync.Cond
	seq    uint64
	closed bool
}

type queueEntry struct {
	jobID string
	rank  int
	seq   uint64
}

type entryHeap []*queueEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank > h[j].rank
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*queueEntry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func newJobQueue() *jobQueue {
	h := &entryHeap{}
	heap.Init(h)
	q := &jobQueue{items: h, ids: make(map[string]struct{})}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues a job ID. Returns false if the queue has been closed. A job
// that is already queued is not enqueued twice; once popped it may be pushed
// again.
func (q *jobQueue) push(jobID string, rank int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if _, queued := q.ids[jobID]; queued {
		return true
	}
	q.ids[jobID] = struct{}{}
	q.seq++
	heap.Push(q.items, &queueEntry{jobID: jobID, rank: rank, seq: q.seq})
	q.cond.Signal()
	return true
}

// pop blocks until a job is available, the queue closes (returns ""), or the
// context is cancelled. Waits are bounded so cancellation is observed even
// without queue activity.
func (q *jobQueue) pop(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	const wakeInterval = 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if q.closed {
			return "", nil
		}
		if q.items.Len() > 0 {
			e := heap.Pop(q.items).(*queueEntry)
			delete(q.ids, e.jobID)
			return e.jobID, nil
		}

		timer := time.AfterFunc(wakeInterval, func() {
			q.cond.Broadcast()
		})
		q.cond.Wait()
		timer.Stop()
	}
}

// remove drops a queued job by ID. Returns false when the job is not queued
// (already dequeued or never enqueued).
func (q *jobQueue) remove(jobID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range *q.items {
		if e.jobID == jobID {
			heap.Remove(q.items, i)
			delete(q.ids, jobID)
			return true
		}
	}
	return false
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

func (q *jobQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
