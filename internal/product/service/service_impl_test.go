package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/config"
	"github.com/smallbiznis/stockbook/internal/events"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
	inventoryrepo "github.com/smallbiznis/stockbook/internal/inventory/repository"
	inventoryservice "github.com/smallbiznis/stockbook/internal/inventory/service"
	"github.com/smallbiznis/stockbook/internal/product/domain"
	"github.com/smallbiznis/stockbook/internal/product/repository"
	"github.com/smallbiznis/stockbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	conn := db.NewTest(t, &domain.Product{}, &inventorydomain.StockLevel{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	ledger := inventoryservice.NewLedger(inventoryservice.Params{
		DB:        conn,
		Log:       zap.NewNop(),
		Clock:     clk,
		Repo:      inventoryrepo.Provide(),
		Publisher: events.NewRecorder(),
	})

	return New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repository.Provide(),
		Ledger:   ledger,
		Business: config.NewStaticBusinessSettings(config.DefaultBusinessSettings()),
	})
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func validCreate(sku string) domain.CreateRequest {
	return domain.CreateRequest{
		SKU:          sku,
		Name:         "Basmati Rice 5kg",
		Category:     "Food Grains",
		HSNCode:      "1006",
		UnitPrice:    decimal.RequireFromString("450.50"),
		CostPrice:    decPtr("380"),
		GSTRate:      decPtr("5"),
		AvailableQty: 40,
	}
}

func TestCreateProductOpensStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("RICE-5"))
	require.NoError(t, err)
	assert.Equal(t, "food-grains", created.CategoryKey)
	assert.Equal(t, int64(10), created.MinQty)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.AvailableQty)
	assert.Equal(t, int64(10), got.MinQty)
	assert.False(t, got.IsLowStock)
	assert.True(t, got.UnitPrice.Equal(decimal.RequireFromString("450.5")))
	assert.True(t, got.GSTRate.Equal(decimal.NewFromInt(5)))
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.CreateRequest)
		want   error
	}{
		{"missing sku", func(r *domain.CreateRequest) { r.SKU = " " }, domain.ErrInvalidSKU},
		{"missing name", func(r *domain.CreateRequest) { r.Name = "" }, domain.ErrInvalidName},
		{"missing category", func(r *domain.CreateRequest) { r.Category = "" }, domain.ErrInvalidCategory},
		{"negative price", func(r *domain.CreateRequest) { r.UnitPrice = decimal.NewFromInt(-1) }, domain.ErrInvalidUnitPrice},
		{"negative cost", func(r *domain.CreateRequest) { r.CostPrice = decPtr("-1") }, domain.ErrInvalidCostPrice},
		{"rate above 100", func(r *domain.CreateRequest) { r.GSTRate = decPtr("100.01") }, domain.ErrInvalidGSTRate},
		{"negative rate", func(r *domain.CreateRequest) { r.GSTRate = decPtr("-5") }, domain.ErrInvalidGSTRate},
		{"negative stock", func(r *domain.CreateRequest) { r.AvailableQty = -1 }, domain.ErrInvalidQuantity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate("SKU-X")
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreate("DUP-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validCreate("DUP-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	items, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpdateProduct(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("TEA-1"))
	require.NoError(t, err)

	name := "Assam Tea 1kg"
	category := "Beverages"
	updated, err := svc.Update(ctx, domain.UpdateRequest{
		ID:        created.ID,
		Name:      &name,
		Category:  &category,
		UnitPrice: decPtr("320"),
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "beverages", updated.CategoryKey)
	assert.True(t, updated.UnitPrice.Equal(decimal.NewFromInt(320)))
	assert.Equal(t, int64(40), updated.AvailableQty)

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, GSTRate: decPtr("101")})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTRate)

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestDeleteProductRemovesStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("DEL-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestListFiltersAndCategoryChart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rice := validCreate("RICE-1")
	_, err := svc.Create(ctx, rice)
	require.NoError(t, err)

	dal := validCreate("DAL-1")
	dal.Name = "Toor Dal"
	_, err = svc.Create(ctx, dal)
	require.NoError(t, err)

	soap := validCreate("SOAP-1")
	soap.Name = "Neem Soap"
	soap.Category = "Personal Care"
	_, err = svc.Create(ctx, soap)
	require.NoError(t, err)

	byCategory, err := svc.List(ctx, domain.ListRequest{Category: "food grains"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byName, err := svc.List(ctx, domain.ListRequest{Name: "NEEM"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "SOAP-1", byName[0].SKU)

	sorted, err := svc.List(ctx, domain.ListRequest{SortBy: "sku", OrderBy: "asc"})
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, "DAL-1", sorted[0].SKU)

	chart, err := svc.CategoryChart(ctx)
	require.NoError(t, err)
	require.Len(t, chart, 2)
	assert.Equal(t, "food-grains", chart[0].CategoryKey)
	assert.Equal(t, int64(2), chart[0].Count)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
