// Package command provides the text command system shared by the API, the
// websocket and the CLI
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/thereceipt/order-printing/internal/dispatch"
	"github.com/thereceipt/order-printing/internal/printer"
	"github.com/thereceipt/order-printing/internal/printing"
	"github.com/thereceipt/order-printing/pkg/directive"
	"github.com/thereceipt/order-printing/pkg/order"
)

// Printers is the printer management the executor needs
type Printers interface {
	GetAllPrinters() []*printer.Printer
	GetPrinter(id string) *printer.Printer
	AddNetworkPrinter(host string, port int, description string) string
	SetPrinterName(id string, name string) bool
	SetPrinterFamily(id string, family string) bool
	DetectPrinters() ([]*printer.Printer, error)
}

// Jobs is the local job queue the executor inspects
type Jobs interface {
	GetAllJobs() []*printer.PrintJob
	GetJob(id string) *printer.PrintJob
	ClearCompleted() int
}

// Printing runs the receipt pipeline
type Printing interface {
	PreviewText(o *order.Order, styled bool) ([]directive.Directive, string, error)
	PrintRemote(ctx context.Context, o *order.Order, printerID int64, familyLabel string) (printing.RemoteReceipt, error)
	PrintLocal(ctx context.Context, o *order.Order, printerName, familyLabel string) dispatch.Result
	Encode(ctx context.Context, ds []directive.Directive, familyLabel string) ([]byte, error)
}

// Loader reads an order from a path or URL
type Loader func(pathOrURL string) (*order.Order, error)

// Executor executes commands
type Executor struct {
	printers Printers
	jobs     Jobs
	service  Printing
	load     Loader
	read     func(pathOrURL string) ([]byte, error)
}

// Option configures an Executor
type Option func(*Executor)

// WithSource reads orders and directive files through src
func WithSource(src order.Source) Option {
	return func(e *Executor) {
		e.load = src.Load
		e.read = src.Read
	}
}

// NewExecutor creates a new command executor
func NewExecutor(printers Printers, jobs Jobs, service Printing, opts ...Option) *Executor {
	e := &Executor{
		printers: printers,
		jobs:     jobs,
		service:  service,
	}
	WithSource(order.Source{})(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result represents the result of executing a command
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Err     error                  `json:"-"`
}

func failure(err error) *Result {
	return &Result{Success: false, Error: err.Error(), Err: err}
}

func usage(text string) *Result {
	return &Result{Success: false, Error: "usage: " + text}
}

// Execute executes a command string and returns a result
func (e *Executor) Execute(ctx context.Context, cmdStr string) *Result {
	parts := parseCommand(cmdStr)
	if len(parts) == 0 {
		return &Result{
			Success: false,
			Error:   "empty command",
		}
	}

	command := parts[0]
	args := parts[1:]

	switch command {
	case "print":
		return e.handlePrint(ctx, args)
	case "remote":
		return e.handleRemote(ctx, args)
	case "preview":
		return e.handlePreview(args)
	case "encode":
		return e.handleEncode(ctx, args)
	case "printer":
		return e.handlePrinter(args)
	case "job":
		return e.handleJob(args)
	case "detect":
		return e.handleDetect(args)
	case "help":
		return e.handleHelp(args)
	default:
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("unknown command: %s. Type 'help' for available commands", command),
		}
	}
}

// parseCommand parses a command string into parts, handling quoted strings
func parseCommand(cmdStr string) []string {
	cmdStr = strings.TrimSpace(cmdStr)
	if cmdStr == "" {
		return []string{}
	}

	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := byte(0)

	for i := 0; i < len(cmdStr); i++ {
		char := cmdStr[i]

		if char == '"' || char == '\'' {
			if !inQuotes {
				inQuotes = true
				quoteChar = char
			} else if char == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else {
				current.WriteByte(char)
			}
		} else if char == ' ' && !inQuotes {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		} else {
			current.WriteByte(char)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
