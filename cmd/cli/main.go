package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"github.com/thereceipt/order-printing/internal/composer"
	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/internal/renderer"
	"github.com/thereceipt/order-printing/pkg/directive"
	"github.com/thereceipt/order-printing/pkg/order"
)

const (
	defaultServerURL = "http://localhost:12212"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
)

func main() {
	var (
		serverURL string
		width     int
		plain     bool
		asJSON    bool
	)
	flags := pflag.NewFlagSet("order-printing-cli", pflag.ExitOnError)
	flags.StringVarP(&serverURL, "server", "s", defaultServerURL, "Server URL")
	flags.IntVarP(&width, "width", "w", encoder.DefaultLineWidth, "Preview line width in characters")
	flags.BoolVar(&plain, "plain", false, "Preview without styling")
	flags.BoolVar(&asJSON, "json", false, "Print the composed directives as JSON instead of a preview")
	flags.Usage = printUsage
	flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "preview" && len(args) == 2 {
		run := func() error { return preview(os.Stdout, args[1], width, !plain) }
		if asJSON {
			run = func() error { return previewJSON(os.Stdout, args[1]) }
		}
		if err := run(); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
			os.Exit(1)
		}
		return
	}

	result := executeCommand(serverURL, joinArgs(args))

	if result.Success {
		printSuccess(os.Stdout, result)
		os.Exit(0)
	}
	printError(os.Stderr, result)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Order Printing CLI

Usage:
  order-printing-cli [flags] <command>

Flags:
  -s, --server <url>    Server URL (default: %s)
  -w, --width <n>       Preview line width (default: %d)
      --plain           Preview without styling
      --json            Print composed directives as JSON

Commands:
  preview <order.json|url>
    Render the receipt locally, no server needed

  print <printer-name> <order-path|url> [epson|star]
    Print an order on a printer attached to the server

  remote <printer-id> <order-path|url> [epson|star]
    Submit an order to the print-job API through the server

  printer list | add-network <host> [port] | rename <id> <name> | family <id> <epson|star>
  job list | status <id> | clear
  detect
  help

Examples:
  order-printing-cli preview ./order.json
  order-printing-cli --json preview ./order.json > directives.json
  order-printing-cli print "Kitchen Printer" ./order.json
  order-printing-cli remote 473 ./order.json star
  order-printing-cli -s http://localhost:8080 printer list

`, defaultServerURL, encoder.DefaultLineWidth)
}

// preview composes and renders an order without a server
func preview(w io.Writer, pathOrURL string, width int, styled bool) error {
	o, err := order.Load(pathOrURL)
	if err != nil {
		return err
	}

	text, err := renderer.New(width, styled).Render(composer.Compose(o))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, text)
	return err
}

// previewJSON prints the directive sequence an order composes to
func previewJSON(w io.Writer, pathOrURL string) error {
	o, err := order.Load(pathOrURL)
	if err != nil {
		return err
	}

	data, err := directive.ToJSON(composer.Compose(o))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

// joinArgs rebuilds a command line, quoting arguments that contain spaces
func joinArgs(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch {
		case !strings.ContainsAny(a, " \t"):
			parts[i] = a
		case !strings.Contains(a, `"`):
			parts[i] = `"` + a + `"`
		default:
			parts[i] = `'` + a + `'`
		}
	}
	return strings.Join(parts, " ")
}

// CommandResult is the /command response; data fields sit next to success
type CommandResult struct {
	Success bool
	Message string
	Error   string
	Data    map[string]interface{}
}

func executeCommand(serverURL, command string) *CommandResult {
	url := strings.TrimSuffix(serverURL, "/") + "/command"

	jsonData, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return &CommandResult{Error: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Post(url, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return &CommandResult{Error: fmt.Sprintf("failed to connect to server: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &CommandResult{Error: fmt.Sprintf("failed to read response: %v", err)}
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return &CommandResult{Error: fmt.Sprintf("failed to parse response (HTTP %d): %v", resp.StatusCode, err)}
	}

	result := &CommandResult{Data: make(map[string]interface{})}
	for k, v := range fields {
		switch k {
		case "success":
			result.Success, _ = v.(bool)
		case "message":
			result.Message, _ = v.(string)
		case "error":
			result.Error, _ = v.(string)
		default:
			result.Data[k] = v
		}
	}
	return result
}

func printSuccess(w io.Writer, result *CommandResult) {
	if result.Message != "" {
		fmt.Fprintln(w, result.Message)
	}

	if printers, ok := result.Data["printers"].([]interface{}); ok {
		fmt.Fprintln(w, successStyle.Render("\nPrinters:"))
		for _, p := range printers {
			if printer, ok := p.(map[string]interface{}); ok {
				name, _ := printer["name"].(string)
				if name == "" {
					name, _ = printer["description"].(string)
				}
				family, _ := printer["family"].(string)
				if family == "" {
					family = "default"
				}
				fmt.Fprintf(w, "  %s: %s %s\n", printer["id"], name,
					mutedStyle.Render(fmt.Sprintf("(%s, %s)", printer["type"], family)))
			}
		}
	}

	if jobs, ok := result.Data["jobs"].([]interface{}); ok {
		fmt.Fprintln(w, successStyle.Render("\nJobs:"))
		for _, j := range jobs {
			if job, ok := j.(map[string]interface{}); ok {
				fmt.Fprintf(w, "  %s: %s %s\n", job["id"], job["status"],
					mutedStyle.Render(fmt.Sprintf("(printer: %s)", job["printer_id"])))
			}
		}
	}

	if jobID, ok := result.Data["job_id"].(string); ok {
		fmt.Fprintf(w, "Job ID: %s\n", jobID)
	}

	if printerID, ok := result.Data["printer_id"].(string); ok {
		fmt.Fprintf(w, "Printer ID: %s\n", printerID)
	}
}

func printError(w io.Writer, result *CommandResult) {
	if result.Error != "" {
		fmt.Fprintln(w, errorStyle.Render("Error: ")+result.Error)
	} else if result.Message != "" {
		fmt.Fprintln(w, result.Message)
	}
}
