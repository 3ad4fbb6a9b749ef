package encoder

import (
	"errors"
	"fmt"

	"github.com/thereceipt/order-printing/pkg/directive"
)

var (
	// ErrUnsupportedPrinterFamily is returned for an unknown printer-type label
	ErrUnsupportedPrinterFamily = errors.New("unsupported printer family")

	// ErrEncodingFailure is returned when a driver rejects a directive
	ErrEncodingFailure = errors.New("encoding failure")
)

// EncodingError reports the directive a driver rejected
type EncodingError struct {
	Index int
	Kind  directive.Kind
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding failure at directive[%d] (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Is matches ErrEncodingFailure
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncodingFailure
}
