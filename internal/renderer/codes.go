package renderer

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/pkg/directive"
)

func (r *Renderer) renderQRCode(q *directive.QRCode) error {
	if q == nil || q.Payload == "" {
		return fmt.Errorf("qrcode payload is required")
	}

	code, err := qrcode.New(q.Payload, encoder.RecoveryLevel(q.Correction))
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	for _, line := range strings.Split(strings.TrimRight(code.ToSmallString(false), "\n"), "\n") {
		r.lines = append(r.lines, align(line, r.width, directive.AlignCenter))
	}
	return nil
}
