package domain

import (
	"context"
	"io"
)

type UPIQRResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Amount      string `json:"amount"`
	Payload     string `json:"upi_url"`
	// QRCode is a base64 encoded PNG.
	QRCode string `json:"qr_code"`
}

type Document struct {
	Filename string
	Content  io.Reader
}

type Service interface {
	UPIQR(ctx context.Context, orderID string) (UPIQRResponse, error)
	RenderInvoicePDF(ctx context.Context, orderID string) (Document, error)
}
