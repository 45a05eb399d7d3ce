package upi

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload(t *testing.T) {
	payload, err := Payload(Payment{
		VPA:    "sharma@okbank",
		Payee:  "Sharma & Sons",
		Amount: decimal.RequireFromString("393.5"),
		Note:   "Invoice ORD-20240601-0001",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"upi://pay?pa=sharma%40okbank&pn=Sharma%20%26%20Sons&am=393.50&cu=INR&tn=Invoice%20ORD-20240601-0001",
		payload,
	)

	_, err = Payload(Payment{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrMissingVPA)
}

func TestQRCodePNG(t *testing.T) {
	raw, err := QRCodePNG("upi://pay?pa=merchant@upi&am=1.00&cu=INR", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())
	assert.Equal(t, DefaultQRSize, img.Bounds().Dy())
}
