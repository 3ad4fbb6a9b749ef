// Package dispatch delivers encoded receipts to a remote print-job API or a local printer
package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrDispatch is matched by every remote submission failure
	ErrDispatch = errors.New("dispatch failed")

	// ErrPrinterNotFound is returned when a local printer name is unknown
	ErrPrinterNotFound = errors.New("printer not found")

	// ErrLocalPrintFailure is matched by every failed local print
	ErrLocalPrintFailure = errors.New("local print failed")

	// ErrUnsupportedFormat is returned for local formats other than RAW
	ErrUnsupportedFormat = errors.New("unsupported print format")
)

// DispatchError reports a non-2xx response or a transport failure
type DispatchError struct {
	StatusCode int // 0 on transport failure
	Body       string
	Err        error
}

func (e *DispatchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("dispatch failed: HTTP %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("dispatch failed: HTTP %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("dispatch failed: %v", e.Err)
	}
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Is matches ErrDispatch
func (e *DispatchError) Is(target error) bool {
	return target == ErrDispatch
}

// LocalPrintError reports a local job the printer did not complete
type LocalPrintError struct {
	PrinterName string
	JobID       string
	Reason      string
	Err         error // context error when the job was never confirmed
}

func (e *LocalPrintError) Error() string {
	return fmt.Sprintf("local print failed on %q (job %s): %s", e.PrinterName, e.JobID, e.Reason)
}

func (e *LocalPrintError) Unwrap() error {
	return e.Err
}

// Is matches ErrLocalPrintFailure
func (e *LocalPrintError) Is(target error) bool {
	return target == ErrLocalPrintFailure
}
