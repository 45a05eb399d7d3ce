package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Name        string
	CategoryKey string
	SortBy      string
	OrderBy     string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Product, error)
	FindListingByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Listing, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Listing, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountByCategory(ctx context.Context, db *gorm.DB) ([]CategoryCount, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
