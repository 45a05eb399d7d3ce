package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOrderNumber(t *testing.T) {
	placed := time.Date(2024, 3, 7, 15, 4, 0, 0, time.UTC)

	got, err := FormatOrderNumber(DefaultOrderNumberTemplate, placed, 12)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240307-0012", got)

	got, err = FormatOrderNumber(DefaultOrderNumberTemplate, placed, 123456)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240307-123456", got)

	got, err = FormatOrderNumber("PO/{YY}/{SEQ}", placed, 5)
	require.NoError(t, err)
	assert.Equal(t, "PO/24/5", got)

	assert.Equal(t, "20240307", DayKey(placed))
}

func TestFormatOrderNumberErrors(t *testing.T) {
	placed := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	_, err := FormatOrderNumber("", placed, 1)
	assert.Error(t, err)

	_, err = FormatOrderNumber(DefaultOrderNumberTemplate, placed, 0)
	assert.Error(t, err)

	_, err = FormatOrderNumber("ORD-{BRANCH}-{SEQ}", placed, 1)
	assert.Error(t, err)
}
