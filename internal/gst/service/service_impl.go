package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/stockbook/internal/config"
	"github.com/smallbiznis/stockbook/internal/gst/domain"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/smallbiznis/stockbook/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Business *config.BusinessSettingsHolder
	Calc     *engine.Calculator
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	business *config.BusinessSettingsHolder
	calc     *engine.Calculator
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("gst.service"),
		repo:     p.Repo,
		business: p.Business,
		calc:     p.Calc,
		metrics:  p.Metrics,
	}
}

// NewCalculator provides the calculator shared by every tax computation.
func NewCalculator() *engine.Calculator {
	return engine.NewCalculator()
}

func (s *Service) ListStates(ctx context.Context) ([]engine.Jurisdiction, error) {
	rows, err := s.repo.ListStates(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return s.calc.Registry().All(), nil
	}

	out := make([]engine.Jurisdiction, 0, len(rows))
	for _, row := range rows {
		out = append(out, engine.Jurisdiction{Code: row.Code, Name: row.Name})
	}
	return out, nil
}

func (s *Service) Split(ctx context.Context, req domain.SplitRequest) (*engine.TaxSplit, error) {
	seller := strings.TrimSpace(req.SellerStateCode)
	if seller == "" {
		seller = s.business.Get().SellerStateCode()
	}

	split, err := s.calc.Split(req.Amount, req.Rate, seller, strings.ToUpper(strings.TrimSpace(req.BuyerGSTIN)))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTaxSplit(ctx, string(split.SupplyType))
	return &split, nil
}

func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResponse, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyQuote
	}

	agg := engine.NewAggregator()
	for _, line := range req.Items {
		if _, err := agg.AddLineItem(line.Rate, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}

	totals := agg.Totals()
	split, err := totals.Split(s.calc, s.business.Get().SellerStateCode(), strings.ToUpper(strings.TrimSpace(req.BuyerGSTIN)))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTaxSplit(ctx, string(split.SupplyType))

	return &domain.QuoteResponse{
		Items:  agg.Items(),
		Totals: totals,
		Split:  split,
	}, nil
}
