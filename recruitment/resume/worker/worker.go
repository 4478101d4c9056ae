package worker

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumesrv"
)

const (
	dequeueTimeout    = 5 * time.Second
	delayedMoveEvery  = 30 * time.Second
	dequeueErrorPause = time.Second
)

type ResumeWorker struct {
	service *resumesrv.Service
	queue   resume.JobQueue
	workers int

	wg sync.WaitGroup
}

func NewResumeWorker(service *resumesrv.Service, queue resume.JobQueue, workers int) *ResumeWorker {
	if workers < 1 {
		workers = 1
	}
	return &ResumeWorker{
		service: service,
		queue:   queue,
		workers: workers,
	}
}

// Start launches the pool; it stops when ctx is cancelled
func (w *ResumeWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d resume workers", w.workers)

	// Start delayed job mover
	w.wg.Add(1)
	go w.moveDelayedJobs(ctx)

	// Start worker pool
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i)
	}
}

// Wait blocks until every goroutine started by Start has returned
func (w *ResumeWorker) Wait() {
	w.wg.Wait()
}

func (w *ResumeWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	logx.Infof("Worker %d started", workerID)

	for {
		if ctx.Err() != nil {
			logx.Infof("Worker %d stopping", workerID)
			return
		}

		jobID, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logx.Errorf("Worker %d dequeue error: %v", workerID, err)
			select {
			case <-ctx.Done():
			case <-time.After(dequeueErrorPause):
			}
			continue
		}

		// Queue timeout - no jobs available
		if jobID.IsEmpty() {
			continue
		}

		logx.Infof("Worker %d processing job: %s", workerID, jobID)
		if err := w.service.ProcessJob(ctx, jobID); err != nil {
			logx.Errorf("Worker %d job failed: %v", workerID, err)
		}
	}
}

func (w *ResumeWorker) moveDelayedJobs(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(delayedMoveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				logx.Errorf("Failed to move delayed jobs: %v", err)
			} else if count > 0 {
				logx.Infof("Moved %d delayed jobs to ready queue", count)
			}
		}
	}
}
