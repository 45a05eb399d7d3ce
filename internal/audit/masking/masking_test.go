package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****3210", MaskSecret("9876543210"))
}

func TestMaskPII(t *testing.T) {
	out := MaskPII(map[string]any{
		"order_number": "ORD-20240101-0001",
		"gstin":        "27ABCDE1234F1Z5",
		"party": map[string]any{
			"Phone": "9876543210",
		},
		"quantity": 4,
	})

	assert.Equal(t, "ORD-20240101-0001", out["order_number"])
	assert.Equal(t, "****F1Z5", out["gstin"])
	assert.Equal(t, "****3210", out["party"].(map[string]any)["Phone"])
	assert.Equal(t, 4, out["quantity"])
	assert.Nil(t, MaskPII(nil))
}
