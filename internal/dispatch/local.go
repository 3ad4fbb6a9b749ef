package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/thereceipt/order-printing/internal/printer"
	"go.uber.org/zap"
)

// FormatRAW is the only local format: bytes go to the printer untouched
const FormatRAW = "RAW"

// PrinterResolver resolves local printers by name
type PrinterResolver interface {
	FindByName(name string) *printer.Printer
	Default() *printer.Printer
}

// JobQueue accepts raw jobs and signals their completion
type JobQueue interface {
	Enqueue(printerID string, data []byte) string
	Wait(ctx context.Context, jobID string) (*printer.PrintJob, error)
}

// Result is the outcome of a local print: a job id, or the reason it failed
type Result struct {
	JobID string `json:"job_id,omitempty"`
	Err   error  `json:"-"`
}

// OK reports whether the printer confirmed the job
func (r Result) OK() bool {
	return r.Err == nil
}

// LocalGateway prints raw buffers on locally attached printers
type LocalGateway struct {
	printers PrinterResolver
	queue    JobQueue
	timeout  time.Duration
	logger   *zap.Logger
}

// NewLocalGateway creates a gateway that waits up to timeout for each job
func NewLocalGateway(printers PrinterResolver, queue JobQueue, timeout time.Duration, logger *zap.Logger) *LocalGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalGateway{
		printers: printers,
		queue:    queue,
		timeout:  timeout,
		logger:   logger,
	}
}

// PrintDirect sends data to the named printer and waits for its completion
// signal. A missing signal within the timeout is a failure.
func (g *LocalGateway) PrintDirect(ctx context.Context, printerName string, data []byte, format string) Result {
	if f := strings.ToUpper(strings.TrimSpace(format)); f != FormatRAW {
		return Result{Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)}
	}

	printerName = strings.TrimSpace(printerName)
	if printerName == "" {
		return Result{Err: fmt.Errorf("%w: printer name is required", ErrPrinterNotFound)}
	}

	p := g.printers.FindByName(printerName)
	if p == nil {
		g.logger.Warn("local printer not found", zap.String("printer", printerName))
		return Result{Err: fmt.Errorf("%w: %s", ErrPrinterNotFound, printerName)}
	}

	jobID := g.queue.Enqueue(p.ID, data)

	waitCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	job, err := g.queue.Wait(waitCtx, jobID)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = fmt.Sprintf("no completion signal within %s", g.timeout)
		}
		return g.fail(printerName, jobID, reason, err)
	}

	if job == nil || job.Status != printer.JobCompleted {
		reason := "job did not complete"
		if job != nil && job.Error != "" {
			reason = job.Error
		}
		return g.fail(printerName, jobID, reason, nil)
	}

	g.logger.Info("local print completed",
		zap.String("printer", printerName),
		zap.String("job_id", jobID),
	)
	return Result{JobID: jobID}
}

// PrintFile prints a raw file on the named printer
func (g *LocalGateway) PrintFile(ctx context.Context, printerName, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to read print file: %w", err)}
	}
	return g.PrintDirect(ctx, printerName, data, FormatRAW)
}

// DefaultPrinter returns the name of the first known printer
func (g *LocalGateway) DefaultPrinter() (string, error) {
	p := g.printers.Default()
	if p == nil {
		return "", fmt.Errorf("%w: no printers available", ErrPrinterNotFound)
	}
	return p.DisplayName(), nil
}

func (g *LocalGateway) fail(printerName, jobID, reason string, cause error) Result {
	g.logger.Error("local print failed",
		zap.String("printer", printerName),
		zap.String("job_id", jobID),
		zap.String("reason", reason),
	)
	return Result{
		JobID: jobID,
		Err:   &LocalPrintError{PrinterName: printerName, JobID: jobID, Reason: reason, Err: cause},
	}
}
