package encoder

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/thereceipt/order-printing/pkg/directive"
)

// QR symbols above this length are refused by both families
const maxQRPayload = 7089

// RecoveryLevel maps a correction level to go-qrcode's
func RecoveryLevel(c directive.Correction) qrcode.RecoveryLevel {
	switch c {
	case directive.CorrectionL:
		return qrcode.Low
	case directive.CorrectionQ:
		return qrcode.High
	case directive.CorrectionH:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// checkQR verifies the payload fits in a QR symbol at the requested correction level
func checkQR(q *directive.QRCode) error {
	if len(q.Payload) > maxQRPayload {
		return fmt.Errorf("qrcode payload too long (%d bytes)", len(q.Payload))
	}
	if _, err := qrcode.New(q.Payload, RecoveryLevel(q.Correction)); err != nil {
		return fmt.Errorf("qrcode payload does not fit: %w", err)
	}
	return nil
}

// correctionIndex maps L, M, Q, H to 0..3
func correctionIndex(c directive.Correction) byte {
	switch c {
	case directive.CorrectionL:
		return 0
	case directive.CorrectionQ:
		return 2
	case directive.CorrectionH:
		return 3
	default:
		return 1
	}
}

func correctionFromIndex(n byte) directive.Correction {
	switch n {
	case 0:
		return directive.CorrectionL
	case 2:
		return directive.CorrectionQ
	case 3:
		return directive.CorrectionH
	default:
		return directive.CorrectionM
	}
}
