package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
)

type DashboardStats struct {
	TotalProducts   int64 `json:"total_products"`
	TotalStock      int64 `json:"total_stock"`
	LowStockCount   int64 `json:"low_stock_count"`
	MonthlySales    int64 `json:"monthly_sales"`
	FulfilmentRate  int64 `json:"fulfilment_rate"`
	PendingOrders   int64 `json:"pending_orders"`
	CompletedOrders int64 `json:"completed_orders"`
}

// ChartData is a labelled series ready for a chart widget.
type ChartData struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

const (
	PointHistorical = "historical"
	PointForecast   = "forecast"
)

type ForecastPoint struct {
	Month  string  `json:"month"`
	Sales  float64 `json:"sales"`
	Orders int64   `json:"orders"`
	Type   string  `json:"type"`
}

type SalesForecast struct {
	Historical []ForecastPoint `json:"historical"`
	Forecast   []ForecastPoint `json:"forecast"`
	// GrowthRate is the clamped average month over month growth.
	GrowthRate float64 `json:"growth_rate"`
}

type ABCBucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Value      float64 `json:"value"`
}

type ABCAnalysis struct {
	CategoryA ABCBucket `json:"categoryA"`
	CategoryB ABCBucket `json:"categoryB"`
	CategoryC ABCBucket `json:"categoryC"`
}

type QuarterTrend struct {
	Quarter string  `json:"quarter"`
	Sales   float64 `json:"sales"`
	Orders  int64   `json:"orders"`
	Growth  float64 `json:"growth"`
}

type ProductProfit struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Profit    float64 `json:"profit"`
	UnitsSold int64   `json:"units_sold"`
}

type ProfitAnalytics struct {
	TotalRevenue float64         `json:"total_revenue"`
	TotalCost    float64         `json:"total_cost"`
	GrossProfit  float64         `json:"gross_profit"`
	ProfitMargin float64         `json:"profit_margin"`
	TopProducts  []ProductProfit `json:"top_products"`
}

// Sale is one sale order reduced to what the time series reports need.
type Sale struct {
	At     time.Time
	Amount decimal.Decimal
}

// ProductSale aggregates the completed sale lines of one product.
type ProductSale struct {
	ProductID snowflake.ID
	Name      string
	SKU       string
	Quantity  int64
	Revenue   decimal.Decimal
	UnitPrice decimal.Decimal
	CostPrice decimal.Decimal
}

type Service interface {
	DashboardStats(ctx context.Context) (DashboardStats, error)
	SalesChart(ctx context.Context) (ChartData, error)
	CategoryChart(ctx context.Context) (ChartData, error)
	SalesForecast(ctx context.Context) (SalesForecast, error)
	ABCAnalysis(ctx context.Context) (ABCAnalysis, error)
	SeasonalTrends(ctx context.Context) ([]QuarterTrend, error)
	InventoryOptimization(ctx context.Context) (inventorydomain.Optimization, error)
	ProfitAnalytics(ctx context.Context) (ProfitAnalytics, error)
}
