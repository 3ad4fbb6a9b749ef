package dispatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereceipt/order-printing/internal/printer"
)

type fakePrinters []*printer.Printer

func (f fakePrinters) FindByName(name string) *printer.Printer {
	for _, p := range f {
		if strings.EqualFold(p.DisplayName(), name) {
			return p
		}
	}
	return nil
}

func (f fakePrinters) Default() *printer.Printer {
	if len(f) == 0 {
		return nil
	}
	return f[0]
}

// fakeQueue finishes every job immediately with the configured status,
// or never signals when hang is set
type fakeQueue struct {
	status   printer.JobStatus
	errMsg   string
	hang     bool
	enqueued map[string][]byte
}

func (q *fakeQueue) Enqueue(printerID string, data []byte) string {
	if q.enqueued == nil {
		q.enqueued = make(map[string][]byte)
	}
	q.enqueued[printerID] = data
	return "job-1"
}

func (q *fakeQueue) Wait(ctx context.Context, jobID string) (*printer.PrintJob, error) {
	if q.hang {
		<-ctx.Done()
		return &printer.PrintJob{ID: jobID, Status: printer.JobQueued}, ctx.Err()
	}
	return &printer.PrintJob{ID: jobID, Status: q.status, Error: q.errMsg}, nil
}

var kitchen = &printer.Printer{ID: "p-1", Type: "network", Description: "Kitchen"}

func TestPrintDirect_Success(t *testing.T) {
	q := &fakeQueue{status: printer.JobCompleted}
	g := NewLocalGateway(fakePrinters{kitchen}, q, time.Second, nil)

	res := g.PrintDirect(context.Background(), "kitchen", []byte("receipt"), "raw")
	require.True(t, res.OK(), "err: %v", res.Err)
	assert.Equal(t, "job-1", res.JobID)
	assert.Equal(t, []byte("receipt"), q.enqueued["p-1"])
}

func TestPrintDirect_PrinterNotFound(t *testing.T) {
	g := NewLocalGateway(fakePrinters{kitchen}, &fakeQueue{}, time.Second, nil)

	res := g.PrintDirect(context.Background(), "Office", []byte("x"), FormatRAW)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrPrinterNotFound)

	res = g.PrintDirect(context.Background(), " ", []byte("x"), FormatRAW)
	assert.ErrorIs(t, res.Err, ErrPrinterNotFound)
}

func TestPrintDirect_UnsupportedFormat(t *testing.T) {
	g := NewLocalGateway(fakePrinters{kitchen}, &fakeQueue{}, time.Second, nil)

	res := g.PrintDirect(context.Background(), "Kitchen", []byte("x"), "PDF")
	assert.ErrorIs(t, res.Err, ErrUnsupportedFormat)
}

func TestPrintDirect_JobFailed(t *testing.T) {
	q := &fakeQueue{status: printer.JobFailed, errMsg: "paper out"}
	g := NewLocalGateway(fakePrinters{kitchen}, q, time.Second, nil)

	res := g.PrintDirect(context.Background(), "Kitchen", []byte("x"), FormatRAW)
	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrLocalPrintFailure)
	assert.Equal(t, "job-1", res.JobID)

	var lpe *LocalPrintError
	require.True(t, errors.As(res.Err, &lpe))
	assert.Equal(t, "paper out", lpe.Reason)
	assert.Equal(t, "Kitchen", lpe.PrinterName)
}

func TestPrintDirect_NoSignalTimesOut(t *testing.T) {
	g := NewLocalGateway(fakePrinters{kitchen}, &fakeQueue{hang: true}, 20*time.Millisecond, nil)

	start := time.Now()
	res := g.PrintDirect(context.Background(), "Kitchen", []byte("x"), FormatRAW)
	assert.Less(t, time.Since(start), time.Second)

	assert.ErrorIs(t, res.Err, ErrLocalPrintFailure)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Contains(t, res.Err.Error(), "no completion signal")
}

func TestPrintFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.bin")
	require.NoError(t, os.WriteFile(path, []byte("raw bytes"), 0644))

	q := &fakeQueue{status: printer.JobCompleted}
	g := NewLocalGateway(fakePrinters{kitchen}, q, time.Second, nil)

	res := g.PrintFile(context.Background(), "Kitchen", path)
	require.True(t, res.OK())
	assert.Equal(t, []byte("raw bytes"), q.enqueued["p-1"])

	res = g.PrintFile(context.Background(), "Kitchen", filepath.Join(t.TempDir(), "missing.bin"))
	assert.False(t, res.OK())
}

func TestDefaultPrinter(t *testing.T) {
	g := NewLocalGateway(fakePrinters{kitchen}, &fakeQueue{}, time.Second, nil)
	name, err := g.DefaultPrinter()
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", name)

	g = NewLocalGateway(fakePrinters{}, &fakeQueue{}, time.Second, nil)
	_, err = g.DefaultPrinter()
	assert.ErrorIs(t, err, ErrPrinterNotFound)
}
