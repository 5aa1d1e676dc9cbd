package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/rlmproc/internal/config"
	"github.com/dgallion1/rlmproc/internal/oracle"
	"github.com/dgallion1/rlmproc/internal/rlm"
)

// Orchestrator manages the document processing pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	proc     *rlm.Processor
	log      *slog.Logger
	cfg      config.Config
	baseOpts rlm.Options

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator wires the job pipeline around one oracle. The oracle is
// wrapped with transient-failure retry so individual chunks survive rate
// limiting.
func NewOrchestrator(cfg config.Config, o oracle.Oracle, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL.Std()),
		queue: make(chan *Job, cfg.MaxQueueSize),
		proc:  rlm.New(WithRetry(o, log), log),
		log:   log,
		cfg:   cfg,
		baseOpts: rlm.Options{
			ChunkSize:          cfg.ChunkSize,
			Overlap:            cfg.ChunkOverlap,
			FilterEnabled:      cfg.FilterEnabled,
			AggregateThreshold: rlm.DefaultAggregateThreshold,
			Concurrency:        cfg.ChunkConcurrency,
		},
	}
}

// BaseOptions returns the server-default run options. Callers copy and
// override fields per request.
func (o *Orchestrator) BaseOptions() rlm.Options {
	return o.baseOpts
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.proc, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// ListJobs returns every tracked job, newest first.
func (o *Orchestrator) ListJobs() []*Job {
	return o.jobs.List()
}

// DeleteJob removes a job record from the store.
func (o *Orchestrator) DeleteJob(id string) bool {
	return o.jobs.Delete(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
