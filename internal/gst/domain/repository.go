package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	UpsertStates(ctx context.Context, db *gorm.DB, states []GSTState) error
	ListStates(ctx context.Context, db *gorm.DB) ([]GSTState, error)
}
