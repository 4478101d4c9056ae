package resumeinfra

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
)

// MemoryQueue is a channel-backed JobQueue for single-process deployments
// and tests
type MemoryQueue struct {
	ready chan kernel.ResumeJobID

	mu      sync.Mutex
	delayed map[kernel.ResumeJobID]time.Time
	now     func() time.Time
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryQueue{
		ready:   make(chan kernel.ResumeJobID, capacity),
		delayed: make(map[kernel.ResumeJobID]time.Time),
		now:     time.Now,
	}
}

var _ resume.JobQueue = (*MemoryQueue)(nil)

func (q *MemoryQueue) Enqueue(ctx context.Context, jobID kernel.ResumeJobID) error {
	select {
	case q.ready <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (kernel.ResumeJobID, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case id := <-q.ready:
		return id, nil
	case <-timer.C:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *MemoryQueue) EnqueueDelayed(ctx context.Context, jobID kernel.ResumeJobID, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.delayed[jobID] = q.now().Add(delay)
	return nil
}

func (q *MemoryQueue) MoveDelayedToReady(ctx context.Context) (int, error) {
	q.mu.Lock()
	now := q.now()
	var due []kernel.ResumeJobID
	for id, at := range q.delayed {
		if !at.After(now) {
			due = append(due, id)
			delete(q.delayed, id)
		}
	}
	q.mu.Unlock()

	for i, id := range due {
		if err := q.Enqueue(ctx, id); err != nil {
			return i, err
		}
	}
	return len(due), nil
}

func (q *MemoryQueue) GetQueueSize(ctx context.Context) (int64, error) {
	return int64(len(q.ready)), nil
}

func (q *MemoryQueue) GetDelayedQueueSize(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.delayed)), nil
}
