package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/customer/domain"
	"github.com/smallbiznis/stockbook/internal/customer/repository"
	"github.com/smallbiznis/stockbook/pkg/db"
	"github.com/smallbiznis/stockbook/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	conn := db.NewTest(t, &domain.Customer{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	}), clk
}

func TestCreateCustomerDerivesStateFromGSTIN(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Kaveri Stores",
		Phone: "9876543210",
		GSTIN: "29aabcu9603r1zm",
	})
	require.NoError(t, err)
	assert.Equal(t, "29AABCU9603R1ZM", created.GSTIN)
	assert.Equal(t, "29", created.StateCode)

	got, err := svc.GetByID(context.Background(), domain.GetCustomerRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.GSTIN, got.GSTIN)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "A", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "A", GSTIN: "29AABCU9603R1XM"})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTIN)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "A", GSTIN: "29AABCU9603R1ZM", StateCode: "27"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateCode)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "A", StateCode: "40"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateCode)

	walkIn, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Walk-in", StateCode: "27"})
	require.NoError(t, err)
	assert.Empty(t, walkIn.GSTIN)
	assert.Equal(t, "27", walkIn.StateCode)
}

func TestUpdateCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ravi", StateCode: "27"})
	require.NoError(t, err)

	gstin := "07AABCU9603R1ZP"
	updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{ID: created.ID.String(), GSTIN: &gstin})
	require.NoError(t, err)
	assert.Equal(t, "07", updated.StateCode)

	empty := ""
	cleared, err := svc.Update(ctx, domain.UpdateCustomerRequest{ID: created.ID.String(), GSTIN: &empty})
	require.NoError(t, err)
	assert.Empty(t, cleared.GSTIN)
	assert.Equal(t, "07", cleared.StateCode)

	_, err = svc.Update(ctx, domain.UpdateCustomerRequest{ID: "12345"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCustomersPaginates(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: fmt.Sprintf("Customer %d", i)})
		require.NoError(t, err)
		clk.Advance(time.Second)
	}

	first, err := svc.List(ctx, domain.ListCustomerRequest{Pagination: pagination.Pagination{PageSize: 3}})
	require.NoError(t, err)
	require.Len(t, first.Customers, 3)
	assert.True(t, first.HasMore)
	assert.Equal(t, "Customer 4", first.Customers[0].Name)

	second, err := svc.List(ctx, domain.ListCustomerRequest{Pagination: pagination.Pagination{PageSize: 3, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, second.Customers, 2)
	assert.False(t, second.HasMore)
	assert.Equal(t, "Customer 0", second.Customers[1].Name)

	filtered, err := svc.List(ctx, domain.ListCustomerRequest{Name: "customer 2"})
	require.NoError(t, err)
	assert.Len(t, filtered.Customers, 1)

	_, err = svc.List(ctx, domain.ListCustomerRequest{Pagination: pagination.Pagination{PageToken: "bogus"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
