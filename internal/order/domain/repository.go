package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Type   Type
	Status Status
}

type Repository interface {
	NextSequence(ctx context.Context, db *gorm.DB, day string) (int64, error)
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItem(ctx context.Context, db *gorm.DB, item *OrderItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*Order, error)
	FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderItem, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, updatedAt time.Time) error
	UpdatePayment(ctx context.Context, db *gorm.DB, id snowflake.ID, status PaymentStatus, method *string, updatedAt time.Time) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Order, error)
}
