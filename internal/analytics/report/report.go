// Package report turns raw sale rows into the analytics views. Everything
// here is pure so the maths can be tested without a database.
package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockbook/internal/analytics/domain"
)

const (
	ChartDays        = 7
	ForecastMonths   = 6
	HistoryMonths    = 12
	MinHistoryMonths = 2

	DefaultGrowth = 0.05
	MinGrowth     = -0.20
	MaxGrowth     = 0.50

	// AverageOrderValue converts projected sales into an order estimate.
	AverageOrderValue = 2000

	TopProducts = 10
)

var (
	hundred      = decimal.NewFromInt(100)
	shareA       = decimal.NewFromInt(80)
	shareB       = decimal.NewFromInt(95)
	costFallback = decimal.RequireFromString("0.7")
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ChartWindowStart is the first instant SalesChart reports on.
func ChartWindowStart(now time.Time) time.Time {
	return startOfDay(now).AddDate(0, 0, -(ChartDays - 1))
}

// HistoryWindowStart is the first month SalesForecast reads.
func HistoryWindowStart(now time.Time) time.Time {
	return startOfMonth(now).AddDate(0, -(HistoryMonths - 1), 0)
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Month().String()[:3], t.Year())
}

// SalesChart sums sale amounts per day over the last ChartDays days ending
// today. Labels are dd/mm.
func SalesChart(now time.Time, sales []domain.Sale) domain.ChartData {
	start := ChartWindowStart(now)
	totals := make([]decimal.Decimal, ChartDays)
	for _, sale := range sales {
		at := sale.At.In(now.Location())
		if at.Before(start) {
			continue
		}
		idx := chartDayIndex(start, at)
		if idx < 0 {
			continue
		}
		totals[idx] = totals[idx].Add(sale.Amount)
	}

	chart := domain.ChartData{
		Labels: make([]string, 0, ChartDays),
		Data:   make([]float64, 0, ChartDays),
	}
	for i := 0; i < ChartDays; i++ {
		chart.Labels = append(chart.Labels, start.AddDate(0, 0, i).Format("02/01"))
		chart.Data = append(chart.Data, totals[i].InexactFloat64())
	}
	return chart
}

// chartDayIndex matches calendar dates, so days shortened or stretched by
// a DST change still land on their own bar.
func chartDayIndex(start, at time.Time) int {
	y, m, d := at.Date()
	for i := 0; i < ChartDays; i++ {
		dy, dm, dd := start.AddDate(0, 0, i).Date()
		if y == dy && m == dm && d == dd {
			return i
		}
	}
	return -1
}

type monthBucket struct {
	month  time.Time
	sales  decimal.Decimal
	orders int64
}

// SalesForecast buckets completed sales by calendar month and projects
// ForecastMonths months ahead from the latest month using the average
// month over month growth.
func SalesForecast(now time.Time, sales []domain.Sale) domain.SalesForecast {
	from := HistoryWindowStart(now)
	byMonth := map[time.Time]*monthBucket{}
	for _, sale := range sales {
		at := sale.At.In(now.Location())
		if at.Before(from) || at.After(now) {
			continue
		}
		key := startOfMonth(at)
		b, ok := byMonth[key]
		if !ok {
			b = &monthBucket{month: key}
			byMonth[key] = b
		}
		b.sales = b.sales.Add(sale.Amount)
		b.orders++
	}

	buckets := make([]*monthBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].month.Before(buckets[j].month) })

	out := domain.SalesForecast{
		Historical: make([]domain.ForecastPoint, 0, len(buckets)),
		Forecast:   []domain.ForecastPoint{},
	}
	for _, b := range buckets {
		out.Historical = append(out.Historical, domain.ForecastPoint{
			Month:  monthLabel(b.month),
			Sales:  b.sales.InexactFloat64(),
			Orders: b.orders,
			Type:   domain.PointHistorical,
		})
	}
	if len(out.Historical) < MinHistoryMonths {
		return out
	}

	growth := averageGrowth(out.Historical)
	out.GrowthRate = round(growth, 4)

	last := out.Historical[len(out.Historical)-1].Sales
	base := startOfMonth(now)
	for i := 1; i <= ForecastMonths; i++ {
		last *= 1 + growth
		var orders int64
		if last > 0 {
			orders = int64(last / AverageOrderValue)
		}
		out.Forecast = append(out.Forecast, domain.ForecastPoint{
			Month:  monthLabel(base.AddDate(0, i, 0)) + " (Forecast)",
			Sales:  round(last, 2),
			Orders: orders,
			Type:   domain.PointForecast,
		})
	}
	return out
}

func averageGrowth(points []domain.ForecastPoint) float64 {
	var total float64
	var periods int
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Sales
		if prev <= 0 {
			continue
		}
		total += (points[i].Sales - prev) / prev
		periods++
	}
	growth := DefaultGrowth
	if periods > 0 {
		growth = total / float64(periods)
	}
	return math.Max(MinGrowth, math.Min(MaxGrowth, growth))
}

// ABC classifies products by cumulative revenue share: up to 80% is A, up
// to 95% is B and the rest C.
func ABC(products []domain.ProductSale) domain.ABCAnalysis {
	var out domain.ABCAnalysis
	ranked := make([]domain.ProductSale, len(products))
	copy(ranked, products)
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].Name < ranked[j].Name
	})

	total := decimal.Zero
	for _, p := range ranked {
		total = total.Add(p.Revenue)
	}
	if len(ranked) == 0 || !total.IsPositive() {
		return out
	}

	var values [3]decimal.Decimal
	var counts [3]int
	cumulative := decimal.Zero
	for _, p := range ranked {
		cumulative = cumulative.Add(p.Revenue)
		share := cumulative.Mul(hundred).Div(total)
		class := 2
		switch {
		case share.LessThanOrEqual(shareA):
			class = 0
		case share.LessThanOrEqual(shareB):
			class = 1
		}
		counts[class]++
		values[class] = values[class].Add(p.Revenue)
	}

	bucket := func(i int) domain.ABCBucket {
		return domain.ABCBucket{
			Count:      counts[i],
			Percentage: round(float64(counts[i])/float64(len(ranked))*100, 1),
			Value:      round(values[i].Mul(hundred).Div(total).InexactFloat64(), 1),
		}
	}
	out.CategoryA = bucket(0)
	out.CategoryB = bucket(1)
	out.CategoryC = bucket(2)
	return out
}

// SeasonalTrends reports Q1 to Q4 of year with growth against the previous
// quarter.
func SeasonalTrends(year int, loc *time.Location, sales []domain.Sale) []domain.QuarterTrend {
	var amounts [4]decimal.Decimal
	var orders [4]int64
	for _, sale := range sales {
		at := sale.At.In(loc)
		if at.Year() != year {
			continue
		}
		q := (int(at.Month()) - 1) / 3
		amounts[q] = amounts[q].Add(sale.Amount)
		orders[q]++
	}

	trends := make([]domain.QuarterTrend, 0, 4)
	for q := 0; q < 4; q++ {
		current := amounts[q].InexactFloat64()
		var growth float64
		if q > 0 {
			if prev := amounts[q-1].InexactFloat64(); prev > 0 {
				growth = round((current-prev)/prev*100, 1)
			}
		}
		trends = append(trends, domain.QuarterTrend{
			Quarter: fmt.Sprintf("Q%d", q+1),
			Sales:   current,
			Orders:  orders[q],
			Growth:  growth,
		})
	}
	return trends
}

// UnitCost is the product's cost price, or 70% of its unit price when no
// cost was recorded.
func UnitCost(p domain.ProductSale) decimal.Decimal {
	if p.CostPrice.IsPositive() {
		return p.CostPrice
	}
	return p.UnitPrice.Mul(costFallback)
}

func Profit(products []domain.ProductSale) domain.ProfitAnalytics {
	out := domain.ProfitAnalytics{TopProducts: []domain.ProductProfit{}}
	revenue, cost := decimal.Zero, decimal.Zero

	rows := make([]domain.ProductProfit, 0, len(products))
	for _, p := range products {
		c := UnitCost(p).Mul(decimal.NewFromInt(p.Quantity))
		revenue = revenue.Add(p.Revenue)
		cost = cost.Add(c)
		rows = append(rows, domain.ProductProfit{
			ProductID: p.ProductID.String(),
			Name:      p.Name,
			Revenue:   p.Revenue.InexactFloat64(),
			Cost:      c.InexactFloat64(),
			Profit:    p.Revenue.Sub(c).InexactFloat64(),
			UnitsSold: p.Quantity,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].UnitsSold != rows[j].UnitsSold {
			return rows[i].UnitsSold > rows[j].UnitsSold
		}
		return rows[i].Name < rows[j].Name
	})
	if len(rows) > TopProducts {
		rows = rows[:TopProducts]
	}
	out.TopProducts = rows

	gross := revenue.Sub(cost)
	out.TotalRevenue = revenue.InexactFloat64()
	out.TotalCost = cost.InexactFloat64()
	out.GrossProfit = gross.InexactFloat64()
	if revenue.IsPositive() {
		out.ProfitMargin = round(gross.Mul(hundred).Div(revenue).InexactFloat64(), 2)
	}
	return out
}

// FulfilmentRate is completed over total orders as a whole percentage.
func FulfilmentRate(completed, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return int64(math.Round(float64(completed) / float64(total) * 100))
}
