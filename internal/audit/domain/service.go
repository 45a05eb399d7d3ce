package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockbook/pkg/db/pagination"
)

// Actions written by the domain services.
const (
	ActionProductCreated     = "product.created"
	ActionProductUpdated     = "product.updated"
	ActionProductDeleted     = "product.deleted"
	ActionStockSet           = "stock.set"
	ActionStockAdjusted      = "stock.adjusted"
	ActionOrderCreated       = "order.created"
	ActionOrderStatusChanged = "order.status_changed"
	ActionOrderPaymentUpdate = "order.payment_updated"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	AuditLog(ctx context.Context, action string, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
)
