// Package upi builds UPI collect payloads and their QR images.
package upi

import (
	"bytes"
	"errors"
	"image/png"
	"net/url"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/shopspring/decimal"
)

const DefaultQRSize = 256

var ErrMissingVPA = errors.New("upi_vpa_not_configured")

// Payment is what a payer's UPI app pre-fills.
type Payment struct {
	VPA   string
	Payee string
	// Amount is rendered with two decimals.
	Amount decimal.Decimal
	Note   string
}

// Payload renders p as upi://pay?pa=..&pn=..&am=..&cu=INR&tn=.. keeping the
// parameter order UPI apps expect.
func Payload(p Payment) (string, error) {
	vpa := strings.TrimSpace(p.VPA)
	if vpa == "" {
		return "", ErrMissingVPA
	}

	var b strings.Builder
	b.WriteString("upi://pay?pa=")
	b.WriteString(escape(vpa))
	b.WriteString("&pn=")
	b.WriteString(escape(strings.TrimSpace(p.Payee)))
	b.WriteString("&am=")
	b.WriteString(p.Amount.StringFixed(2))
	b.WriteString("&cu=INR")
	if note := strings.TrimSpace(p.Note); note != "" {
		b.WriteString("&tn=")
		b.WriteString(escape(note))
	}
	return b.String(), nil
}

// escape is query escaping with %20 for spaces; some UPI apps show '+'
// literally.
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// QRCodePNG encodes content as a size x size PNG QR code.
func QRCodePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
