package encoder

import (
	"context"
	"fmt"

	"github.com/thereceipt/order-printing/pkg/directive"
)

// DefaultLineWidth is the character count of an 80mm roll in font A
const DefaultLineWidth = 48

// Config holds encoder settings
type Config struct {
	LineWidth int
}

// DefaultConfig returns a 48 column configuration
func DefaultConfig() Config {
	return Config{LineWidth: DefaultLineWidth}
}

func (c Config) lineWidth() int {
	if c.LineWidth <= 0 {
		return DefaultLineWidth
	}
	return c.LineWidth
}

// Driver accepts directives one at a time and produces the final buffer.
// Finalize must be called once, after the last directive.
type Driver interface {
	Encode(d directive.Directive) error
	Finalize(ctx context.Context) ([]byte, error)
}

// NewDriver creates the driver for a family
func NewDriver(f Family, cfg Config) (Driver, error) {
	switch f {
	case FamilyEpson:
		return newEpsonDriver(cfg), nil
	case FamilyStar:
		return newStarDriver(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPrinterFamily, string(f))
	}
}

// Encoder encodes directive sequences with a fixed configuration
type Encoder struct {
	cfg Config
}

// New creates an encoder
func New(cfg Config) *Encoder {
	return &Encoder{cfg: cfg}
}

// Encode resolves label to a family and encodes ds for it
func (e *Encoder) Encode(ctx context.Context, ds []directive.Directive, label string) ([]byte, error) {
	return Encode(ctx, ds, label, e.cfg)
}

// Encode resolves label to a family and encodes ds for it
func Encode(ctx context.Context, ds []directive.Directive, label string, cfg Config) ([]byte, error) {
	f, err := ParseFamily(label)
	if err != nil {
		return nil, err
	}
	return EncodeFamily(ctx, ds, f, cfg)
}

// EncodeFamily validates ds, drives it through the family's driver and returns
// the finalized buffer. On any error no bytes are returned.
func EncodeFamily(ctx context.Context, ds []directive.Directive, f Family, cfg Config) ([]byte, error) {
	for i := range ds {
		if err := directive.ValidateOne(&ds[i]); err != nil {
			return nil, &EncodingError{Index: i, Kind: ds[i].Kind, Err: err}
		}
	}

	d, err := NewDriver(f, cfg)
	if err != nil {
		return nil, err
	}

	for i := range ds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.Encode(ds[i]); err != nil {
			return nil, &EncodingError{Index: i, Kind: ds[i].Kind, Err: err}
		}
	}

	return d.Finalize(ctx)
}
