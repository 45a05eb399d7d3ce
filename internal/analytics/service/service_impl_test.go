package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockbook/internal/analytics/domain"
	"github.com/smallbiznis/stockbook/internal/cache"
	"github.com/smallbiznis/stockbook/internal/clock"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
	orderdomain "github.com/smallbiznis/stockbook/internal/order/domain"
	productdomain "github.com/smallbiznis/stockbook/internal/product/domain"
	"github.com/smallbiznis/stockbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeProducts struct {
	productdomain.Service
}

func (fakeProducts) Count(context.Context) (int64, error) { return 3, nil }

func (fakeProducts) CategoryChart(context.Context) ([]productdomain.CategoryCount, error) {
	return []productdomain.CategoryCount{
		{Category: "Stationery", CategoryKey: "stationery", Count: 2},
		{Category: "Snacks", CategoryKey: "snacks", Count: 1},
	}, nil
}

type fakeInventory struct {
	inventorydomain.Service
}

func (fakeInventory) Summary(context.Context) (inventorydomain.Summary, error) {
	return inventorydomain.Summary{TotalStock: 120, LowStockCount: 2}, nil
}

func (fakeInventory) Optimization(context.Context) (inventorydomain.Optimization, error) {
	return inventorydomain.Optimization{Optimal: 3, Suggestions: []inventorydomain.Suggestion{}}, nil
}

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T, jsonCache cache.JSONCache) *fixture {
	t.Helper()
	conn := db.NewTest(t, &productdomain.Product{}, &orderdomain.Order{}, &orderdomain.OrderItem{})
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 6, 7, 15, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		Clock:     clk,
		Products:  fakeProducts{},
		Inventory: fakeInventory{},
		Cache:     jsonCache,
	})
	return &fixture{svc: svc, db: conn, node: node, clock: clk}
}

func (f *fixture) product(t *testing.T, name, price, cost string) snowflake.ID {
	t.Helper()
	p := productdomain.Product{
		ID:          f.node.Generate(),
		SKU:         name,
		Name:        name,
		Category:    "General",
		CategoryKey: "general",
		UnitPrice:   decimal.RequireFromString(price),
		CostPrice:   decimal.RequireFromString(cost),
		GSTRate:     decimal.NewFromInt(18),
		CreatedAt:   f.clock.Now(),
		UpdatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p.ID
}

func (f *fixture) order(t *testing.T, at time.Time, orderType orderdomain.Type, status orderdomain.Status, productID snowflake.ID, qty int64, base string) {
	t.Helper()
	amount := decimal.RequireFromString(base)
	o := orderdomain.Order{
		ID:              f.node.Generate(),
		OrderNumber:     "ORD-" + f.node.Generate().String(),
		OrderDay:        at.Format("20060102"),
		Sequence:        1,
		Type:            orderType,
		Status:          status,
		PaymentStatus:   orderdomain.PaymentUnpaid,
		SellerStateCode: "27",
		SupplyType:      "intra_state",
		Subtotal:        amount,
		TaxAmount:       decimal.Zero,
		CGST:            decimal.Zero,
		SGST:            decimal.Zero,
		IGST:            decimal.Zero,
		GrandTotal:      amount,
		ItemCount:       1,
		OrderDate:       at,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	require.NoError(t, f.db.Create(&o).Error)
	require.NoError(t, f.db.Create(&orderdomain.OrderItem{
		ID:          f.node.Generate(),
		OrderID:     o.ID,
		ProductID:   productID,
		SKU:         "x",
		Name:        "x",
		Quantity:    qty,
		UnitPrice:   amount.Div(decimal.NewFromInt(qty)),
		GSTRate:     decimal.Zero,
		BaseAmount:  amount,
		TaxAmount:   decimal.Zero,
		TotalAmount: amount,
		CreatedAt:   at,
	}).Error)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, nil)
	pen := f.product(t, "Pen", "10", "6")
	now := f.clock.Now()

	f.order(t, now.Add(-time.Hour), orderdomain.TypeSale, orderdomain.StatusCompleted, pen, 1, "10")
	f.order(t, now.Add(-2*time.Hour), orderdomain.TypeSale, orderdomain.StatusPending, pen, 1, "10")
	f.order(t, now.AddDate(0, -1, 0), orderdomain.TypeSale, orderdomain.StatusCompleted, pen, 1, "10")
	f.order(t, now.Add(-time.Hour), orderdomain.TypePurchase, orderdomain.StatusPending, pen, 1, "10")

	stats, err := f.svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(120), stats.TotalStock)
	assert.Equal(t, int64(2), stats.LowStockCount)
	assert.Equal(t, int64(2), stats.MonthlySales)
	assert.Equal(t, int64(50), stats.FulfilmentRate)
	assert.Equal(t, int64(2), stats.PendingOrders)
}

func TestSalesChartAndCategoryChart(t *testing.T) {
	f := newFixture(t, nil)
	pen := f.product(t, "Pen", "10", "6")
	now := f.clock.Now()

	f.order(t, now.Add(-time.Hour), orderdomain.TypeSale, orderdomain.StatusPending, pen, 2, "20")
	f.order(t, now.AddDate(0, 0, -6), orderdomain.TypeSale, orderdomain.StatusCompleted, pen, 1, "10")
	f.order(t, now.AddDate(0, 0, -8), orderdomain.TypeSale, orderdomain.StatusCompleted, pen, 1, "99")

	chart, err := f.svc.SalesChart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "01/06", chart.Labels[0])
	assert.Equal(t, []float64{10, 0, 0, 0, 0, 0, 20}, chart.Data)

	categories, err := f.svc.CategoryChart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Stationery", "Snacks"}, categories.Labels)
	assert.Equal(t, []float64{2, 1}, categories.Data)
}

func TestProductAnalytics(t *testing.T) {
	f := newFixture(t, nil)
	pen := f.product(t, "Pen", "100", "60")
	clip := f.product(t, "Clip", "20", "0")
	now := f.clock.Now()

	f.order(t, now.Add(-time.Hour), orderdomain.TypeSale, orderdomain.StatusCompleted, pen, 10, "1000")
	f.order(t, now.Add(-time.Hour), orderdomain.TypeSale, orderdomain.StatusCompleted, clip, 20, "400")
	f.order(t, now.Add(-time.Hour), orderdomain.TypeSale, orderdomain.StatusCancelled, clip, 50, "1000")

	profit, err := f.svc.ProfitAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1400.0, profit.TotalRevenue)
	assert.Equal(t, 880.0, profit.TotalCost)
	require.Len(t, profit.TopProducts, 2)
	assert.Equal(t, "Clip", profit.TopProducts[0].Name)

	abc, err := f.svc.ABCAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, abc.CategoryA.Count)
	assert.Equal(t, 1, abc.CategoryC.Count)

	trends, err := f.svc.SeasonalTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, trends, 4)
	assert.Equal(t, int64(2), trends[1].Orders)

	optimization, err := f.svc.InventoryOptimization(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, optimization.Optimal)
}

func TestSalesForecastFromCompletedOrders(t *testing.T) {
	f := newFixture(t, nil)
	pen := f.product(t, "Pen", "10", "6")
	now := f.clock.Now()

	f.order(t, now.AddDate(0, -2, 0), orderdomain.TypeSale, orderdomain.StatusCompleted, pen, 1, "1000")
	f.order(t, now.AddDate(0, -1, 0), orderdomain.TypeSale, orderdomain.StatusCompleted, pen, 1, "1100")
	f.order(t, now.AddDate(0, -1, 0), orderdomain.TypeSale, orderdomain.StatusPending, pen, 1, "5000")

	forecast, err := f.svc.SalesForecast(context.Background())
	require.NoError(t, err)
	require.Len(t, forecast.Historical, 2)
	assert.Equal(t, 1100.0, forecast.Historical[1].Sales)
	assert.Len(t, forecast.Forecast, 6)
}

func TestResultsAreCached(t *testing.T) {
	f := newFixture(t, cache.NewMemoryJSONCache())
	pen := f.product(t, "Pen", "10", "6")
	now := f.clock.Now()
	ctx := context.Background()

	f.order(t, now.Add(-time.Hour), orderdomain.TypeSale, orderdomain.StatusPending, pen, 1, "10")
	first, err := f.svc.SalesChart(ctx)
	require.NoError(t, err)

	f.order(t, now.Add(-time.Hour), orderdomain.TypeSale, orderdomain.StatusPending, pen, 1, "10")
	second, err := f.svc.SalesChart(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
