package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/supplier/domain"
	"github.com/smallbiznis/stockbook/internal/supplier/repository"
	"github.com/smallbiznis/stockbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	conn := db.NewTest(t, &domain.Supplier{})
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestSupplierLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateSupplierRequest{
		Name:          "Deccan Wholesale",
		ContactPerson: "Anil",
		GSTIN:         "36aabcd1234e1z2",
	})
	require.NoError(t, err)
	assert.Equal(t, "36AABCD1234E1Z2", created.GSTIN)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Anil", got.ContactPerson)

	list, err := svc.List(ctx, domain.ListSupplierRequest{Name: "deccan"})
	require.NoError(t, err)
	assert.Len(t, list.Suppliers, 1)
	assert.False(t, list.HasMore)
}

func TestSupplierValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateSupplierRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateSupplierRequest{Name: "X", GSTIN: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTIN)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Get(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
