package repository

import (
	"context"

	"github.com/smallbiznis/stockbook/internal/gst/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertStates(ctx context.Context, db *gorm.DB, states []domain.GSTState) error {
	if len(states) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(&states).Error
}

func (r *repo) ListStates(ctx context.Context, db *gorm.DB) ([]domain.GSTState, error) {
	var states []domain.GSTState
	err := db.WithContext(ctx).Raw(
		`SELECT code, name, created_at FROM gst_states ORDER BY name ASC`,
	).Scan(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}
