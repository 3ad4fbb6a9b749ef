package printer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus is the lifecycle state of a print job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobPrinting  JobStatus = "printing"
	JobFailed    JobStatus = "failed"
	JobCompleted JobStatus = "completed"
)

// ErrJobNotFound is returned for an unknown job id
var ErrJobNotFound = errors.New("print job not found")

// PrintJob is a raw buffer waiting for, or sent to, a local printer
type PrintJob struct {
	ID          string    `json:"id"`
	PrinterID   string    `json:"printer_id"`
	Data        []byte    `json:"-"`
	Size        int       `json:"size"`
	Retries     int       `json:"retries"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	done      chan struct{}
	notBefore time.Time
}

// Finished reports whether the job completed or failed
func (j *PrintJob) Finished() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// Sender delivers a buffer to a printer
type Sender interface {
	Send(p *Printer, data []byte) error
}

// PrinterLookup resolves printer ids
type PrinterLookup interface {
	GetPrinter(id string) *Printer
}

// PrintQueue delivers raw jobs one at a time with retry logic
type PrintQueue struct {
	jobs       []*PrintJob
	mu         sync.Mutex
	sender     Sender
	printers   PrinterLookup
	maxRetries int
	retryDelay time.Duration
	interval   time.Duration
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewPrintQueue creates a queue and starts its worker. maxRetries is the
// number of delivery attempts per job.
func NewPrintQueue(sender Sender, printers PrinterLookup, maxRetries int, logger *zap.Logger) *PrintQueue {
	return newPrintQueue(sender, printers, maxRetries, time.Second, 100*time.Millisecond, logger)
}

func newPrintQueue(sender Sender, printers PrinterLookup, maxRetries int, retryDelay, interval time.Duration, logger *zap.Logger) *PrintQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &PrintQueue{
		jobs:       make([]*PrintJob, 0),
		sender:     sender,
		printers:   printers,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		interval:   interval,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// Enqueue adds a raw buffer for printerID and returns the job id
func (q *PrintQueue) Enqueue(printerID string, data []byte) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	job := &PrintJob{
		ID:        uuid.New().String(),
		PrinterID: printerID,
		Data:      data,
		Size:      len(data),
		Status:    JobQueued,
		CreatedAt: time.Now(),
		done:      make(chan struct{}),
	}
	q.jobs = append(q.jobs, job)

	q.logger.Info("print job queued",
		zap.String("job_id", job.ID),
		zap.String("printer_id", printerID),
		zap.Int("bytes", len(data)),
	)

	return job.ID
}

// Wait blocks until the job finishes or ctx is done and returns the job state
func (q *PrintQueue) Wait(ctx context.Context, jobID string) (*PrintJob, error) {
	q.mu.Lock()
	var job *PrintJob
	for _, j := range q.jobs {
		if j.ID == jobID {
			job = j
			break
		}
	}
	q.mu.Unlock()

	if job == nil {
		return nil, ErrJobNotFound
	}

	// the job may be cleared from the queue once done, so copy it directly
	select {
	case <-job.done:
		return q.snapshot(job), nil
	case <-ctx.Done():
		return q.snapshot(job), ctx.Err()
	}
}

func (q *PrintQueue) snapshot(job *PrintJob) *PrintJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobCopy := *job
	return &jobCopy
}

// worker processes print jobs
func (q *PrintQueue) worker() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			for q.processNextJob() {
			}
		}
	}
}

// processNextJob attempts the oldest due job and reports whether one was found
func (q *PrintQueue) processNextJob() bool {
	now := time.Now()

	q.mu.Lock()
	var job *PrintJob
	for _, j := range q.jobs {
		if j.Status == JobQueued && !now.Before(j.notBefore) {
			job = j
			job.Status = JobPrinting
			break
		}
	}
	q.mu.Unlock()

	if job == nil {
		return false
	}

	err := q.printJob(job)

	q.mu.Lock()
	defer q.mu.Unlock()

	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("printer_id", job.PrinterID)}

	if err != nil {
		job.Retries++
		job.Error = err.Error()

		if job.Retries >= q.maxRetries {
			job.Status = JobFailed
			q.finish(job)
			q.logger.Error("print job failed", append(fields, zap.Int("attempts", job.Retries), zap.Error(err))...)
		} else {
			job.Status = JobQueued
			job.notBefore = time.Now().Add(q.retryDelay)
			q.logger.Warn("print job failed, retrying",
				append(fields, zap.Int("attempt", job.Retries), zap.Int("max_attempts", q.maxRetries), zap.Error(err))...)
		}
		return true
	}

	job.Status = JobCompleted
	job.Error = ""
	q.finish(job)
	q.logger.Info("print job completed", fields...)
	return true
}

// finish marks job done and releases its buffer; callers hold the lock
func (q *PrintQueue) finish(job *PrintJob) {
	job.CompletedAt = time.Now()
	job.Data = nil
	close(job.done)
}

func (q *PrintQueue) printJob(job *PrintJob) error {
	printer := q.printers.GetPrinter(job.PrinterID)
	if printer == nil {
		return errors.New("printer not found: " + job.PrinterID)
	}
	return q.sender.Send(printer, job.Data)
}

// GetJob returns a copy of the job, or nil
func (q *PrintQueue) GetJob(jobID string) *PrintJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.ID == jobID {
			jobCopy := *job
			return &jobCopy
		}
	}
	return nil
}

// GetAllJobs returns copies of all jobs
func (q *PrintQueue) GetAllJobs() []*PrintJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]*PrintJob, len(q.jobs))
	for i, job := range q.jobs {
		jobCopy := *job
		jobs[i] = &jobCopy
	}
	return jobs
}

// ClearCompleted removes completed jobs from the queue
func (q *PrintQueue) ClearCompleted() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	filtered := make([]*PrintJob, 0, len(q.jobs))
	for _, job := range q.jobs {
		if job.Status != JobCompleted {
			filtered = append(filtered, job)
		}
	}

	removed := len(q.jobs) - len(filtered)
	q.jobs = filtered
	return removed
}

// Stop stops the print queue worker
func (q *PrintQueue) Stop() {
	q.cancel()
	q.wg.Wait()
}
