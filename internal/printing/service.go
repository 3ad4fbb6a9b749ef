// Package printing runs the receipt pipeline: compose, encode, dispatch
package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thereceipt/order-printing/internal/dispatch"
	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/internal/metrics"
	"github.com/thereceipt/order-printing/internal/renderer"
	"github.com/thereceipt/order-printing/pkg/directive"
	"github.com/thereceipt/order-printing/pkg/order"
	"go.uber.org/zap"
)

// Composer builds the directive sequence for an order
type Composer interface {
	Compose(o *order.Order) []directive.Directive
}

// Encoder turns directives into printer bytes for a family label
type Encoder interface {
	Encode(ctx context.Context, ds []directive.Directive, label string) ([]byte, error)
}

// RemoteDispatcher submits a buffer to the print-job API
type RemoteDispatcher interface {
	Dispatch(ctx context.Context, buf []byte, printerID int64) (string, error)
}

// LocalPrinter prints a buffer on a locally attached printer
type LocalPrinter interface {
	PrintDirect(ctx context.Context, printerName string, data []byte, format string) dispatch.Result
}

// FamilyLookup returns the family stored for a local printer, if any
type FamilyLookup interface {
	FamilyOf(printerName string) string
}

// RemoteReceipt is the outcome of a remote print
type RemoteReceipt struct {
	JobID  string `json:"job_id"`
	Base64 string `json:"content"`
}

// Config holds service settings
type Config struct {
	DefaultFamily string
	LineWidth     int // preview columns
}

// Service wires the pipeline stages together
type Service struct {
	composer Composer
	encoder  Encoder
	remote   RemoteDispatcher
	local    LocalPrinter
	families FamilyLookup
	metrics  *metrics.Metrics
	cfg      Config
	logger   *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithRemote enables PrintRemote
func WithRemote(r RemoteDispatcher) Option {
	return func(s *Service) { s.remote = r }
}

// WithLocal enables PrintLocal
func WithLocal(l LocalPrinter) Option {
	return func(s *Service) { s.local = l }
}

// WithFamilies lets PrintLocal pick the family stored for a printer
func WithFamilies(f FamilyLookup) Option {
	return func(s *Service) { s.families = f }
}

// WithMetrics records pipeline metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a pipeline service
func NewService(c Composer, e Encoder, cfg Config, opts ...Option) *Service {
	if cfg.DefaultFamily == "" {
		cfg.DefaultFamily = string(encoder.FamilyEpson)
	}
	s := &Service{
		composer: c,
		encoder:  e,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview validates the order and returns its directives
func (s *Service) Preview(o *order.Order) ([]directive.Directive, error) {
	if err := order.Validate(o); err != nil {
		return nil, err
	}
	return s.composer.Compose(o), nil
}

// PreviewText returns the directives with their text rendering
func (s *Service) PreviewText(o *order.Order, styled bool) ([]directive.Directive, string, error) {
	ds, err := s.Preview(o)
	if err != nil {
		return nil, "", err
	}

	text, err := renderer.New(s.cfg.LineWidth, styled).Render(ds)
	if err != nil {
		return nil, "", err
	}
	return ds, text, nil
}

// Render composes and encodes the receipt. An empty label uses the default family.
func (s *Service) Render(ctx context.Context, o *order.Order, familyLabel string) ([]byte, error) {
	ds, err := s.Preview(o)
	if err != nil {
		return nil, err
	}

	family, err := encoder.ParseFamily(s.label(familyLabel))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordComposed(family.String())

	return s.encode(ctx, ds, family)
}

// Encode encodes a ready directive sequence. An empty label uses the default family.
func (s *Service) Encode(ctx context.Context, ds []directive.Directive, familyLabel string) ([]byte, error) {
	family, err := encoder.ParseFamily(s.label(familyLabel))
	if err != nil {
		return nil, err
	}
	return s.encode(ctx, ds, family)
}

func (s *Service) encode(ctx context.Context, ds []directive.Directive, family encoder.Family) ([]byte, error) {
	buf, err := s.encoder.Encode(ctx, ds, family.String())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEncoded(family.String(), len(buf))
	return buf, nil
}

// PrintRemote renders the receipt and submits it to the print-job API
func (s *Service) PrintRemote(ctx context.Context, o *order.Order, printerID int64, familyLabel string) (RemoteReceipt, error) {
	if s.remote == nil {
		return RemoteReceipt{}, fmt.Errorf("%w: remote printing is not configured", dispatch.ErrDispatch)
	}

	buf, err := s.Render(ctx, o, familyLabel)
	if err != nil {
		return RemoteReceipt{}, err
	}

	start := time.Now()
	jobID, err := s.remote.Dispatch(ctx, buf, printerID)
	s.metrics.RecordDispatch(metrics.TargetRemote, err, time.Since(start))
	if err != nil {
		return RemoteReceipt{}, err
	}

	s.logger.Info("order printed remotely",
		zap.Int64("order_id", o.ID),
		zap.Int64("printer_id", printerID),
		zap.String("job_id", jobID),
	)
	return RemoteReceipt{JobID: jobID, Base64: dispatch.EncodeContent(buf)}, nil
}

// PrintLocal renders the receipt and prints it on a local printer. An empty
// label uses the printer's stored family, then the default family.
func (s *Service) PrintLocal(ctx context.Context, o *order.Order, printerName, familyLabel string) dispatch.Result {
	if s.local == nil {
		return dispatch.Result{Err: fmt.Errorf("%w: local printing is not configured", dispatch.ErrPrinterNotFound)}
	}

	if strings.TrimSpace(familyLabel) == "" && s.families != nil {
		familyLabel = s.families.FamilyOf(printerName)
	}

	buf, err := s.Render(ctx, o, familyLabel)
	if err != nil {
		return dispatch.Result{Err: err}
	}

	start := time.Now()
	res := s.local.PrintDirect(ctx, printerName, buf, dispatch.FormatRAW)
	s.metrics.RecordDispatch(metrics.TargetLocal, res.Err, time.Since(start))

	if res.OK() {
		s.logger.Info("order printed locally",
			zap.Int64("order_id", o.ID),
			zap.String("printer", printerName),
			zap.String("job_id", res.JobID),
		)
	}
	return res
}

func (s *Service) label(familyLabel string) string {
	if strings.TrimSpace(familyLabel) == "" {
		return s.cfg.DefaultFamily
	}
	return familyLabel
}
