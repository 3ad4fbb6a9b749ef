package dispatch

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentTypeRawBase64 tells the print-job API the content is base64 raw printer data
const ContentTypeRawBase64 = "raw_base64"

const maxResponseBody = 1 << 20

// RemoteConfig holds the print-job API settings
type RemoteConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// RemoteGateway submits print jobs to a PrintNode-style API.
// It never retries; the caller decides.
type RemoteGateway struct {
	cfg    RemoteConfig
	client *http.Client
	logger *zap.Logger
}

type printJobRequest struct {
	PrinterID   int64  `json:"printerId"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// NewRemoteGateway creates a gateway. A nil client uses http.DefaultClient.
func NewRemoteGateway(cfg RemoteConfig, client *http.Client, logger *zap.Logger) *RemoteGateway {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteGateway{cfg: cfg, client: client, logger: logger}
}

// EncodeContent returns the base64 form of a buffer as submitted to the API
func EncodeContent(buf []byte) string {
	return base64.StdEncoding.EncodeToString(buf)
}

// Dispatch submits buf to printerID and returns the job id from the response.
// The configured timeout applies when ctx has no deadline.
func (g *RemoteGateway) Dispatch(ctx context.Context, buf []byte, printerID int64) (string, error) {
	if g.cfg.APIKey == "" {
		return "", &DispatchError{Err: errors.New("print-job API key is not configured")}
	}

	if _, ok := ctx.Deadline(); !ok && g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(printJobRequest{
		PrinterID:   printerID,
		ContentType: ContentTypeRawBase64,
		Content:     EncodeContent(buf),
	})
	if err != nil {
		return "", &DispatchError{Err: fmt.Errorf("failed to marshal print job: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &DispatchError{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(g.cfg.APIKey, "")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("print job submission failed",
			zap.Int64("printer_id", printerID),
			zap.Error(err),
		)
		return "", &DispatchError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", &DispatchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	text := strings.TrimSpace(string(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Error("print job rejected",
			zap.Int64("printer_id", printerID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", text),
		)
		return "", &DispatchError{StatusCode: resp.StatusCode, Body: text}
	}

	jobID, err := parseJobID(respBody)
	if err != nil {
		return "", &DispatchError{StatusCode: resp.StatusCode, Body: text, Err: err}
	}

	g.logger.Info("print job submitted",
		zap.Int64("printer_id", printerID),
		zap.String("job_id", jobID),
		zap.Int("bytes", len(buf)),
	)
	return jobID, nil
}

// parseJobID accepts a bare JSON number or string, or an object with id or jobId
func parseJobID(body []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("invalid job id response: %w", err)
	}

	if obj, ok := v.(map[string]interface{}); ok {
		for _, key := range []string{"id", "jobId"} {
			if id, ok := obj[key]; ok {
				v = id
				break
			}
		}
	}

	switch id := v.(type) {
	case json.Number:
		return id.String(), nil
	case string:
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("response has no job id")
}
