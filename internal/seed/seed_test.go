package seed

import (
	"context"
	"testing"

	"github.com/smallbiznis/stockbook/internal/gst/domain"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/smallbiznis/stockbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureGSTStates(t *testing.T) {
	conn := db.NewTest(t, &domain.GSTState{})
	ctx := context.Background()

	require.NoError(t, EnsureGSTStates(ctx, conn, nil))
	require.NoError(t, EnsureGSTStates(ctx, conn, nil))

	var count int64
	require.NoError(t, conn.Model(&domain.GSTState{}).Count(&count).Error)
	assert.Equal(t, int64(engine.DefaultRegistry().Len()), count)

	var delhi domain.GSTState
	require.NoError(t, conn.First(&delhi, "code = ?", "07").Error)
	assert.Equal(t, "Delhi", delhi.Name)
}

func TestEnsureGSTStatesRequiresDB(t *testing.T) {
	assert.Error(t, EnsureGSTStates(context.Background(), nil, nil))
}
