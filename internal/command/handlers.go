package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/thereceipt/order-printing/internal/dispatch"
	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/internal/printer"
	"github.com/thereceipt/order-printing/pkg/directive"
)

// handlePrint handles local print commands
// Usage: print <printer-name> <order-path|url> [family]
func (e *Executor) handlePrint(ctx context.Context, args []string) *Result {
	if len(args) < 2 {
		return usage("print <printer-name> <order-path|url> [family]")
	}

	printerName := args[0]
	o, err := e.load(args[1])
	if err != nil {
		return failure(fmt.Errorf("failed to load order: %w", err))
	}

	res := e.service.PrintLocal(ctx, o, printerName, optional(args, 2))
	if !res.OK() {
		return failure(res.Err)
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Order #%d printed on %s (job %s)", o.ID, printerName, res.JobID),
		Data: map[string]interface{}{
			"job_id":   res.JobID,
			"printer":  printerName,
			"order_id": o.ID,
		},
	}
}

// handleRemote handles print-job API commands
// Usage: remote <printer-id> <order-path|url> [family]
func (e *Executor) handleRemote(ctx context.Context, args []string) *Result {
	if len(args) < 2 {
		return usage("remote <printer-id> <order-path|url> [family]")
	}

	printerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("invalid printer id: %s", args[0]),
		}
	}

	o, err := e.load(args[1])
	if err != nil {
		return failure(fmt.Errorf("failed to load order: %w", err))
	}

	receipt, err := e.service.PrintRemote(ctx, o, printerID, optional(args, 2))
	if err != nil {
		return failure(err)
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Print job submitted: %s", receipt.JobID),
		Data: map[string]interface{}{
			"job_id":     receipt.JobID,
			"printer_id": printerID,
			"content":    receipt.Base64,
		},
	}
}

// handlePreview renders an order as text
// Usage: preview <order-path|url>
func (e *Executor) handlePreview(args []string) *Result {
	if len(args) < 1 {
		return usage("preview <order-path|url>")
	}

	o, err := e.load(args[0])
	if err != nil {
		return failure(fmt.Errorf("failed to load order: %w", err))
	}

	ds, text, err := e.service.PreviewText(o, false)
	if err != nil {
		return failure(err)
	}

	return &Result{
		Success: true,
		Message: text,
		Data: map[string]interface{}{
			"directives": ds,
		},
	}
}

// handleEncode encodes a JSON directive file for a printer family
// Usage: encode <directives-path|url> [family]
func (e *Executor) handleEncode(ctx context.Context, args []string) *Result {
	if len(args) < 1 {
		return usage("encode <directives-path|url> [family]")
	}

	data, err := e.read(args[0])
	if err != nil {
		return failure(fmt.Errorf("failed to read directives: %w", err))
	}

	ds, err := directive.Parse(data)
	if err != nil {
		return failure(err)
	}

	buf, err := e.service.Encode(ctx, ds, optional(args, 1))
	if err != nil {
		return failure(err)
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Encoded %d directive(s) into %d byte(s)", len(ds), len(buf)),
		Data: map[string]interface{}{
			"size":    len(buf),
			"content": dispatch.EncodeContent(buf),
		},
	}
}

// handlePrinter handles printer commands
// Usage: printer list | add-network <host> [port] | rename <id> <name> | family <id> <family>
func (e *Executor) handlePrinter(args []string) *Result {
	if len(args) == 0 {
		return usage("printer <list|add-network|rename|family>")
	}

	subcommand := args[0]

	switch subcommand {
	case "list":
		printers := e.printers.GetAllPrinters()
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Found %d printer(s)", len(printers)),
			Data: map[string]interface{}{
				"printers": printers,
			},
		}

	case "add-network":
		if len(args) < 2 {
			return usage("printer add-network <host> [port]")
		}
		host := args[1]
		port := 9100
		if len(args) >= 3 {
			var err error
			port, err = strconv.Atoi(args[2])
			if err != nil || port <= 0 || port > 65535 {
				return &Result{
					Success: false,
					Error:   fmt.Sprintf("invalid port: %s", args[2]),
				}
			}
		}
		description := fmt.Sprintf("Network: %s:%d", host, port)
		printerID := e.printers.AddNetworkPrinter(host, port, description)
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Added network printer: %s", description),
			Data: map[string]interface{}{
				"printer_id": printerID,
				"printer":    e.printers.GetPrinter(printerID),
			},
		}

	case "rename":
		if len(args) < 3 {
			return usage("printer rename <id> <name>")
		}
		printerID := args[1]
		name := args[2]
		if !e.printers.SetPrinterName(printerID, name) {
			return &Result{
				Success: false,
				Error:   fmt.Sprintf("printer not found: %s", printerID),
			}
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Renamed printer %s to %s", printerID, name),
		}

	case "family":
		if len(args) < 3 {
			return usage("printer family <id> <epson|star>")
		}
		printerID := args[1]
		family, err := encoder.ParseFamily(args[2])
		if err != nil {
			return failure(err)
		}
		if !e.printers.SetPrinterFamily(printerID, family.String()) {
			return &Result{
				Success: false,
				Error:   fmt.Sprintf("printer not found: %s", printerID),
			}
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Printer %s uses the %s command set", printerID, family),
		}

	default:
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("unknown printer subcommand: %s. Use: list, add-network, rename, family", subcommand),
		}
	}
}

// handleJob handles job commands
// Usage: job list | status <id> | clear
func (e *Executor) handleJob(args []string) *Result {
	if len(args) == 0 {
		return usage("job <list|status|clear>")
	}

	subcommand := args[0]

	switch subcommand {
	case "list":
		jobs := e.jobs.GetAllJobs()
		jobList := make([]map[string]interface{}, len(jobs))
		for i, job := range jobs {
			jobList[i] = JobData(job)
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Found %d job(s)", len(jobs)),
			Data: map[string]interface{}{
				"jobs": jobList,
			},
		}

	case "status":
		if len(args) < 2 {
			return usage("job status <id>")
		}
		jobID := args[1]
		job := e.jobs.GetJob(jobID)
		if job == nil {
			return failure(fmt.Errorf("%w: %s", printer.ErrJobNotFound, jobID))
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Job %s is %s", job.ID, job.Status),
			Data:    JobData(job),
		}

	case "clear":
		n := e.jobs.ClearCompleted()
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Cleared %d finished job(s)", n),
		}

	default:
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("unknown job subcommand: %s. Use: list, status, clear", subcommand),
		}
	}
}

// handleDetect handles detect command
// Usage: detect
func (e *Executor) handleDetect(args []string) *Result {
	printers, err := e.printers.DetectPrinters()
	if err != nil {
		return failure(fmt.Errorf("detection failed: %w", err))
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Detected %d printer(s)", len(printers)),
		Data: map[string]interface{}{
			"count": len(printers),
		},
	}
}

// handleHelp handles help command
func (e *Executor) handleHelp(args []string) *Result {
	helpText := `Available Commands:

  print <printer-name> <order-path|url> [epson|star]
    Print an order receipt on a local printer

  remote <printer-id> <order-path|url> [epson|star]
    Submit an order receipt to the print-job API

  preview <order-path|url>
    Show the receipt as text

  encode <directives-path|url> [epson|star]
    Encode a JSON directive file, output is base64

  printer list
    List all known printers

  printer add-network <host> [port]
    Add a network printer (default port: 9100)

  printer rename <id> <name>
    Set a custom name for a printer

  printer family <id> <epson|star>
    Set the command set a printer understands

  job list
    List all local print jobs

  job status <id>
    Get status of a specific job

  job clear
    Clear finished jobs from the queue

  detect
    Detect/scan for printers

  help
    Show this help message

Examples:
  print "Kitchen Printer" ./order.json
  remote 473 https://example.com/orders/1042.json star
  printer add-network 192.168.1.100 9100
  printer rename printer-123 "Kitchen Printer"
  job status 3f0c...
`

	return &Result{
		Success: true,
		Message: helpText,
	}
}

// JobData is the JSON view of a local job
func JobData(job *printer.PrintJob) map[string]interface{} {
	data := map[string]interface{}{
		"id":         job.ID,
		"printer_id": job.PrinterID,
		"status":     job.Status,
		"retries":    job.Retries,
		"size":       job.Size,
		"created_at": job.CreatedAt,
	}
	if !job.CompletedAt.IsZero() {
		data["completed_at"] = job.CompletedAt
	}
	if job.Error != "" {
		data["error"] = job.Error
	}
	return data
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
