package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"casedesk/internal/model"
	"casedesk/internal/repository"
)

const (
	defaultCapacity   = 100
	defaultBatchSize  = 10
	defaultFlushEvery = time.Second
)

// Recorder appends case audit entries asynchronously in small batches.
// When the queue is full, or Run has returned, the entry is written
// synchronously instead.
type Recorder struct {
	repo       repository.CaseLogRepository
	log        *zap.Logger
	entries    chan model.CaseLog
	batchSize  int
	flushEvery time.Duration

	mu      sync.RWMutex
	stopped bool
}

// NewRecorder creates a recorder. Run must be started for queued entries to be written.
func NewRecorder(repo repository.CaseLogRepository, log *zap.Logger) *Recorder {
	return newRecorder(repo, log, defaultCapacity, defaultBatchSize, defaultFlushEvery)
}

func newRecorder(repo repository.CaseLogRepository, log *zap.Logger, capacity, batchSize int, flushEvery time.Duration) *Recorder {
	return &Recorder{
		repo:       repo,
		log:        log,
		entries:    make(chan model.CaseLog, capacity),
		batchSize:  batchSize,
		flushEvery: flushEvery,
	}
}

// Record queues entry without blocking.
func (r *Recorder) Record(ctx context.Context, entry model.CaseLog) {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	r.mu.RLock()
	queued := false
	if !r.stopped {
		select {
		case r.entries <- entry:
			queued = true
		default:
		}
	}
	r.mu.RUnlock()
	if queued {
		return
	}
	if err := r.repo.Create(ctx, &entry); err != nil {
		r.log.Error("write case log", zap.String("case_id", entry.CaseID.String()), zap.Error(err))
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	batch := make([]model.CaseLog, 0, r.batchSize)
	ticker := time.NewTicker(r.flushEvery)
	defer ticker.Stop()

	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := r.repo.CreateBatch(ctx, batch); err != nil {
			r.log.Error("flush case logs", zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = make([]model.CaseLog, 0, r.batchSize)
	}

	for {
		select {
		case entry := <-r.entries:
			batch = append(batch, entry)
			if len(batch) >= r.batchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
			r.mu.Lock()
			r.stopped = true
			r.mu.Unlock()
		drain:
			for {
				select {
				case entry := <-r.entries:
					batch = append(batch, entry)
				default:
					break drain
				}
			}
			flush(context.WithoutCancel(ctx))
			return
		}
	}
}
