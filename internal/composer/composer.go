// Package composer turns an order into the directive sequence of its receipt.
//
// Composition is pure: no I/O, no logging, no shared state. Callers are expected
// to run order.Validate first; Compose never fails on a validated order.
package composer

import (
	"github.com/thereceipt/order-printing/pkg/directive"
	"github.com/thereceipt/order-printing/pkg/order"
)

// Options holds the fixed literals printed on every receipt
type Options struct {
	SourceTag  string
	BrandLines []string
	QR         directive.QRCode
}

// DefaultOptions returns the L4Market receipt literals
func DefaultOptions() Options {
	return Options{
		SourceTag:  "L4MARKET",
		BrandLines: []string{"L4MARKET", "www.l4market.com", "Powered by L4Market"},
		QR: directive.QRCode{
			Payload:    "https://l4market.com/",
			CellSize:   6,
			Correction: directive.CorrectionM,
			Model:      2,
		},
	}
}

// Composer builds receipts with a fixed set of options
type Composer struct {
	opts Options
}

// New creates a composer
func New(opts Options) *Composer {
	return &Composer{opts: opts}
}

// Compose builds a receipt with DefaultOptions
func Compose(o *order.Order) []directive.Directive {
	return New(DefaultOptions()).Compose(o)
}

// Compose returns the receipt for o, block by block
func (c *Composer) Compose(o *order.Order) []directive.Directive {
	blocks := [][]directive.Directive{
		headerBlock(o),
		bannerBlock(o, c.opts),
		noteBlock(o),
		preparationBlock(o),
		metadataBlock(o),
		itemsHeaderBlock(),
		itemsBlock(o),
		totalsBlock(o),
		paymentBlock(o),
		footerBlock(c.opts),
	}

	n := 0
	for _, b := range blocks {
		n += len(b)
	}

	out := make([]directive.Directive, 0, n)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}
