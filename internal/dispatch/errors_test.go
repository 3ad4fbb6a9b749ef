package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchError(t *testing.T) {
	tests := []struct {
		name string
		err  *DispatchError
		want string
	}{
		{"status", &DispatchError{StatusCode: 401, Body: "unauthorized"}, "dispatch failed: HTTP 401: unauthorized"},
		{"transport", &DispatchError{Err: errors.New("connection refused")}, "dispatch failed: connection refused"},
		{"status and cause", &DispatchError{StatusCode: 201, Err: errors.New("bad id")}, "dispatch failed: HTTP 201: bad id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), ErrDispatch)
			assert.NotErrorIs(t, tt.err, ErrLocalPrintFailure)
		})
	}
}

func TestLocalPrintError(t *testing.T) {
	err := &LocalPrintError{PrinterName: "Kitchen", JobID: "job-1", Reason: "paper out"}
	assert.Equal(t, `local print failed on "Kitchen" (job job-1): paper out`, err.Error())
	assert.ErrorIs(t, err, ErrLocalPrintFailure)
	assert.NotErrorIs(t, err, ErrDispatch)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)

	err.Err = context.DeadlineExceeded
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
