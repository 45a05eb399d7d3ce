package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, level *StockLevel) error
	FindByProductID(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*StockLevel, error)
	// FindForUpdate locks the row for the rest of the transaction.
	FindForUpdate(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*StockLevel, error)
	Update(ctx context.Context, db *gorm.DB, level *StockLevel) error
	Delete(ctx context.Context, db *gorm.DB, productID snowflake.ID) error
	ListWithProducts(ctx context.Context, db *gorm.DB, lowOnly bool) ([]ProductStock, error)
	Summary(ctx context.Context, db *gorm.DB) (Summary, error)
}
