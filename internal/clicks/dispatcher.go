package clicks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"linkly/internal/entities"
	"linkly/internal/metrics"
)

// Job is one click waiting to be recorded.
type Job struct {
	URLID     string
	ShortCode string
	Context   entities.ClickContext
}

// ClickRecorder is satisfied by *Recorder.
type ClickRecorder interface {
	Record(ctx context.Context, urlID string, cc entities.ClickContext) (*entities.Click, error)
}

type DispatcherConfig struct {
	Workers       int
	QueueSize     int
	RecordTimeout time.Duration
}

// Dispatcher records clicks on a fixed pool of workers fed by a bounded queue.
// Failures are logged and never reach the caller.
type Dispatcher struct {
	recorder ClickRecorder
	queue    chan Job
	cfg      DispatcherConfig
	logger   *zap.Logger
}

func NewDispatcher(recorder ClickRecorder, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = 5 * time.Second
	}
	return &Dispatcher{
		recorder: recorder,
		queue:    make(chan Job, cfg.QueueSize),
		cfg:      cfg,
		logger:   logger,
	}
}

// Dispatch enqueues job without blocking. It returns false and drops the job when
// the queue is full.
func (d *Dispatcher) Dispatch(job Job) bool {
	select {
	case d.queue <- job:
		metrics.SetClickQueueDepth(len(d.queue))
		return true
	default:
		metrics.ClickDropped()
		d.logger.Warn("click queue full, dropping click",
			zap.String("short_code", job.ShortCode),
			zap.String("url_id", job.URLID),
		)
		return false
	}
}

// Run processes jobs until ctx is cancelled, then records whatever is still queued
// and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	var g errgroup.Group
	for i := 0; i < d.cfg.Workers; i++ {
		g.Go(func() error {
			d.work(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case job := <-d.queue:
			d.handle(job)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case job := <-d.queue:
			d.handle(job)
		default:
			return
		}
	}
}

// handle runs one job with its own deadline. The parent context is not used so that
// draining after shutdown still gets a full timeout.
func (d *Dispatcher) handle(job Job) {
	metrics.SetClickQueueDepth(len(d.queue))

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.RecordTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.ClickFailed()
			d.logger.Error("click recorder panicked",
				zap.String("short_code", job.ShortCode),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if _, err := d.recorder.Record(ctx, job.URLID, job.Context); err != nil {
		metrics.ClickFailed()
		d.logger.Error("failed to record click",
			zap.String("short_code", job.ShortCode),
			zap.String("url_id", job.URLID),
			zap.Error(err),
		)
		return
	}
	metrics.ClickRecorded()
}
