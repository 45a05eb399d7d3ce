package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/stockbook/internal/audit/domain"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/events"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/smallbiznis/stockbook/internal/inventory/domain"
	"github.com/smallbiznis/stockbook/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	Publisher events.Publisher
	Audit     auditdomain.Service `optional:"true"`
	Metrics   *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	publisher events.Publisher
	audit     auditdomain.Service
	metrics   *metrics.Metrics
}

func newService(p Params) *Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("inventory.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		publisher: p.Publisher,
		audit:     p.Audit,
		metrics:   p.Metrics,
	}
}

func New(p Params) domain.Service {
	return newService(p)
}

func NewLedger(p Params) domain.Ledger {
	return newService(p)
}

func (s *Service) Get(ctx context.Context, productID string) (*domain.StockResponse, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}

	level, err := s.repo.FindByProductID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrNotFound
	}
	return toResponse(level), nil
}

func (s *Service) SetLevels(ctx context.Context, req domain.SetLevelsRequest) (*domain.StockResponse, error) {
	id, err := parseProductID(req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.AvailableQty != nil && *req.AvailableQty < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.MinQty != nil && *req.MinQty < 0 {
		return nil, domain.ErrInvalidMinQty
	}

	var (
		level    *domain.StockLevel
		movement domain.Movement
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		movement = domain.Movement{ProductID: id, Before: current.AvailableQty, WasLow: current.IsLow()}
		if req.AvailableQty != nil {
			current.AvailableQty = *req.AvailableQty
		}
		if req.MinQty != nil {
			current.MinQty = *req.MinQty
		}
		current.UpdatedAt = s.clock.Now()
		movement.After = current.AvailableQty
		movement.Applied = current.AvailableQty - movement.Before
		movement.MinQty = current.MinQty

		level = current
		return s.repo.Update(ctx, tx, current)
	})
	if err != nil {
		return nil, err
	}

	s.NotifyLow(ctx, []domain.Movement{movement})
	s.writeAudit(ctx, auditdomain.ActionStockSet, id, map[string]any{
		"available_qty": level.AvailableQty,
		"min_qty":       level.MinQty,
	})
	return toResponse(level), nil
}

func (s *Service) Adjust(ctx context.Context, req domain.AdjustRequest) (*domain.StockResponse, error) {
	id, err := parseProductID(req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Delta == 0 {
		return nil, domain.ErrInvalidDelta
	}

	var movement domain.Movement
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if req.Delta > 0 {
			movement, err = s.Credit(ctx, tx, id, req.Delta)
		} else {
			movement, err = s.Debit(ctx, tx, id, -req.Delta)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.NotifyLow(ctx, []domain.Movement{movement})
	s.writeAudit(ctx, auditdomain.ActionStockAdjusted, id, map[string]any{
		"delta":   req.Delta,
		"applied": movement.Applied,
		"reason":  strings.TrimSpace(req.Reason),
	})

	return &domain.StockResponse{
		ProductID:    id.String(),
		AvailableQty: movement.After,
		MinQty:       movement.MinQty,
		IsLow:        movement.After <= movement.MinQty,
		UpdatedAt:    s.clock.Now(),
	}, nil
}

func (s *Service) LowStockAlerts(ctx context.Context) ([]domain.LowStockAlert, error) {
	rows, err := s.repo.ListWithProducts(ctx, s.db, true)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.LowStockAlert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, domain.LowStockAlert{
			ProductID:    row.ProductID.String(),
			SKU:          row.SKU,
			Name:         row.Name,
			Category:     row.Category,
			AvailableQty: row.AvailableQty,
			MinQty:       row.MinQty,
			Shortage:     max(row.MinQty-row.AvailableQty, 0),
		})
	}
	return alerts, nil
}

func (s *Service) Optimization(ctx context.Context) (domain.Optimization, error) {
	rows, err := s.repo.ListWithProducts(ctx, s.db, false)
	if err != nil {
		return domain.Optimization{}, err
	}
	return domain.Optimize(rows), nil
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	return s.repo.Summary(ctx, s.db)
}

func (s *Service) Open(ctx context.Context, tx *gorm.DB, productID snowflake.ID, available, minQty int64) error {
	if available < 0 {
		return domain.ErrInvalidQuantity
	}
	if minQty < 0 {
		return domain.ErrInvalidMinQty
	}
	return s.repo.Insert(ctx, tx, &domain.StockLevel{
		ProductID:    productID,
		AvailableQty: available,
		MinQty:       minQty,
		UpdatedAt:    s.clock.Now(),
	})
}

func (s *Service) Remove(ctx context.Context, tx *gorm.DB, productID snowflake.ID) error {
	return s.repo.Delete(ctx, tx, productID)
}

func (s *Service) Debit(ctx context.Context, tx *gorm.DB, productID snowflake.ID, qty int64) (domain.Movement, error) {
	if qty <= 0 {
		return domain.Movement{}, domain.ErrInvalidQuantity
	}
	return s.move(ctx, tx, productID, func(available int64) (int64, int64) {
		return engine.DebitStock(available, qty)
	})
}

func (s *Service) Credit(ctx context.Context, tx *gorm.DB, productID snowflake.ID, qty int64) (domain.Movement, error) {
	if qty <= 0 {
		return domain.Movement{}, domain.ErrInvalidQuantity
	}
	return s.move(ctx, tx, productID, func(available int64) (int64, int64) {
		return engine.CreditStock(available, qty), qty
	})
}

func (s *Service) move(ctx context.Context, tx *gorm.DB, productID snowflake.ID, apply func(int64) (int64, int64)) (domain.Movement, error) {
	level, err := s.repo.FindForUpdate(ctx, tx, productID)
	if err != nil {
		return domain.Movement{}, err
	}
	if level == nil {
		return domain.Movement{}, domain.ErrNotFound
	}

	after, applied := apply(level.AvailableQty)
	movement := domain.Movement{
		ProductID: productID,
		Before:    level.AvailableQty,
		After:     after,
		Applied:   applied,
		MinQty:    level.MinQty,
		WasLow:    level.IsLow(),
	}

	level.AvailableQty = after
	level.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, tx, level); err != nil {
		return domain.Movement{}, err
	}
	return movement, nil
}

func (s *Service) NotifyLow(ctx context.Context, movements []domain.Movement) {
	for _, m := range movements {
		if !m.CrossedLow() {
			continue
		}
		s.metrics.RecordStockLow(ctx)
		s.log.Info("stock at or below minimum",
			zap.String("product_id", m.ProductID.String()),
			zap.Int64("available_qty", m.After),
			zap.Int64("min_qty", m.MinQty),
		)
		if s.publisher == nil {
			continue
		}
		err := s.publisher.Publish(ctx, events.EventTypeStockLow, m.ProductID.String(), events.StockLow{
			ProductID:    m.ProductID.String(),
			AvailableQty: m.After,
			MinQty:       m.MinQty,
		})
		if err != nil {
			s.log.Warn("failed to publish stock.low", zap.String("product_id", m.ProductID.String()), zap.Error(err))
		}
	}
}

func (s *Service) writeAudit(ctx context.Context, action string, productID snowflake.ID, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	target := productID.String()
	_ = s.audit.AuditLog(ctx, action, "stock", &target, metadata)
}

func parseProductID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidProductID
	}
	return id, nil
}

func toResponse(level *domain.StockLevel) *domain.StockResponse {
	return &domain.StockResponse{
		ProductID:    level.ProductID.String(),
		AvailableQty: level.AvailableQty,
		MinQty:       level.MinQty,
		IsLow:        level.IsLow(),
		UpdatedAt:    level.UpdatedAt,
	}
}
