package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockbook/internal/analytics/domain"
	"github.com/smallbiznis/stockbook/internal/analytics/report"
	"github.com/smallbiznis/stockbook/internal/cache"
	"github.com/smallbiznis/stockbook/internal/clock"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
	orderdomain "github.com/smallbiznis/stockbook/internal/order/domain"
	productdomain "github.com/smallbiznis/stockbook/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheTTL    = time.Minute
	cachePrefix = "analytics:"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Products  productdomain.Service
	Inventory inventorydomain.Service
	Cache     cache.JSONCache `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	products  productdomain.Service
	inventory inventorydomain.Service
	cache     cache.JSONCache
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("analytics.service"),
		clock:     p.Clock,
		products:  p.Products,
		inventory: p.Inventory,
		cache:     p.Cache,
	}
}

type saleRow struct {
	CreatedAt  time.Time       `gorm:"column:created_at"`
	GrandTotal decimal.Decimal `gorm:"column:grand_total"`
}

type productSaleRow struct {
	ProductID snowflake.ID    `gorm:"column:product_id"`
	Name      string          `gorm:"column:name"`
	SKU       string          `gorm:"column:sku"`
	Quantity  int64           `gorm:"column:quantity"`
	Revenue   decimal.Decimal `gorm:"column:revenue"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price"`
	CostPrice decimal.Decimal `gorm:"column:cost_price"`
}

type orderCountRow struct {
	Total     int64 `gorm:"column:total"`
	Completed int64 `gorm:"column:completed"`
	Pending   int64 `gorm:"column:pending"`
}

func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	return cached(ctx, s, "dashboard", func(ctx context.Context) (domain.DashboardStats, error) {
		totalProducts, err := s.products.Count(ctx)
		if err != nil {
			return domain.DashboardStats{}, err
		}
		summary, err := s.inventory.Summary(ctx)
		if err != nil {
			return domain.DashboardStats{}, err
		}

		var counts orderCountRow
		err = s.db.WithContext(ctx).Raw(
			`SELECT COUNT(*) AS total,
			        COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
			        COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending
			 FROM orders`,
			orderdomain.StatusCompleted,
			orderdomain.StatusPending,
		).Scan(&counts).Error
		if err != nil {
			return domain.DashboardStats{}, err
		}

		now := s.clock.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		var monthly int64
		err = s.db.WithContext(ctx).Raw(
			`SELECT COUNT(*) FROM orders WHERE order_type = ? AND created_at >= ?`,
			orderdomain.TypeSale,
			monthStart,
		).Scan(&monthly).Error
		if err != nil {
			return domain.DashboardStats{}, err
		}

		return domain.DashboardStats{
			TotalProducts:   totalProducts,
			TotalStock:      summary.TotalStock,
			LowStockCount:   summary.LowStockCount,
			MonthlySales:    monthly,
			FulfilmentRate:  report.FulfilmentRate(counts.Completed, counts.Total),
			PendingOrders:   counts.Pending,
			CompletedOrders: counts.Completed,
		}, nil
	})
}

func (s *Service) SalesChart(ctx context.Context) (domain.ChartData, error) {
	return cached(ctx, s, "sales-chart", func(ctx context.Context) (domain.ChartData, error) {
		now := s.clock.Now()
		sales, err := s.sales(ctx, report.ChartWindowStart(now), false)
		if err != nil {
			return domain.ChartData{}, err
		}
		return report.SalesChart(now, sales), nil
	})
}

func (s *Service) CategoryChart(ctx context.Context) (domain.ChartData, error) {
	return cached(ctx, s, "category-chart", func(ctx context.Context) (domain.ChartData, error) {
		counts, err := s.products.CategoryChart(ctx)
		if err != nil {
			return domain.ChartData{}, err
		}
		chart := domain.ChartData{
			Labels: make([]string, 0, len(counts)),
			Data:   make([]float64, 0, len(counts)),
		}
		for _, c := range counts {
			chart.Labels = append(chart.Labels, c.Category)
			chart.Data = append(chart.Data, float64(c.Count))
		}
		return chart, nil
	})
}

func (s *Service) SalesForecast(ctx context.Context) (domain.SalesForecast, error) {
	return cached(ctx, s, "sales-forecast", func(ctx context.Context) (domain.SalesForecast, error) {
		now := s.clock.Now()
		sales, err := s.sales(ctx, report.HistoryWindowStart(now), true)
		if err != nil {
			return domain.SalesForecast{}, err
		}
		return report.SalesForecast(now, sales), nil
	})
}

func (s *Service) ABCAnalysis(ctx context.Context) (domain.ABCAnalysis, error) {
	return cached(ctx, s, "abc-analysis", func(ctx context.Context) (domain.ABCAnalysis, error) {
		products, err := s.productSales(ctx)
		if err != nil {
			return domain.ABCAnalysis{}, err
		}
		return report.ABC(products), nil
	})
}

func (s *Service) SeasonalTrends(ctx context.Context) ([]domain.QuarterTrend, error) {
	return cached(ctx, s, "seasonal-trends", func(ctx context.Context) ([]domain.QuarterTrend, error) {
		now := s.clock.Now()
		yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		sales, err := s.sales(ctx, yearStart, true)
		if err != nil {
			return nil, err
		}
		return report.SeasonalTrends(now.Year(), now.Location(), sales), nil
	})
}

// InventoryOptimization is not cached; stock moves with every order.
func (s *Service) InventoryOptimization(ctx context.Context) (inventorydomain.Optimization, error) {
	return s.inventory.Optimization(ctx)
}

func (s *Service) ProfitAnalytics(ctx context.Context) (domain.ProfitAnalytics, error) {
	return cached(ctx, s, "profit", func(ctx context.Context) (domain.ProfitAnalytics, error) {
		products, err := s.productSales(ctx)
		if err != nil {
			return domain.ProfitAnalytics{}, err
		}
		return report.Profit(products), nil
	})
}

func (s *Service) sales(ctx context.Context, since time.Time, completedOnly bool) ([]domain.Sale, error) {
	stmt := s.db.WithContext(ctx).
		Table("orders").
		Select("created_at, grand_total").
		Where("order_type = ? AND created_at >= ?", orderdomain.TypeSale, since)
	if completedOnly {
		stmt = stmt.Where("status = ?", orderdomain.StatusCompleted)
	}

	var rows []saleRow
	if err := stmt.Order("created_at ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	sales := make([]domain.Sale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, domain.Sale{At: row.CreatedAt, Amount: row.GrandTotal})
	}
	return sales, nil
}

// productSales aggregates completed sale lines per product. Lines of
// deleted products keep their snapshot name and price.
func (s *Service) productSales(ctx context.Context) ([]domain.ProductSale, error) {
	var rows []productSaleRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT oi.product_id AS product_id,
		        COALESCE(MAX(p.name), MAX(oi.name)) AS name,
		        COALESCE(MAX(p.sku), MAX(oi.sku)) AS sku,
		        SUM(oi.quantity) AS quantity,
		        SUM(oi.base_amount) AS revenue,
		        COALESCE(MAX(p.unit_price), MAX(oi.unit_price)) AS unit_price,
		        COALESCE(MAX(p.cost_price), 0) AS cost_price
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 LEFT JOIN products p ON p.id = oi.product_id
		 WHERE o.order_type = ? AND o.status = ?
		 GROUP BY oi.product_id`,
		orderdomain.TypeSale,
		orderdomain.StatusCompleted,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	products := make([]domain.ProductSale, 0, len(rows))
	for _, row := range rows {
		products = append(products, domain.ProductSale{
			ProductID: row.ProductID,
			Name:      row.Name,
			SKU:       row.SKU,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue,
			UnitPrice: row.UnitPrice,
			CostPrice: row.CostPrice,
		})
	}
	return products, nil
}

// cached serves key from the JSON cache when present and stores fresh
// results for cacheTTL. Cache failures fall through to compute.
func cached[T any](ctx context.Context, s *Service, key string, compute func(context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return compute(ctx)
	}

	var out T
	hit, err := s.cache.Get(ctx, cachePrefix+key, &out)
	if err != nil {
		s.log.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return out, nil
	}

	out, err = compute(ctx)
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, cachePrefix+key, out, cacheTTL); err != nil {
		s.log.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}
