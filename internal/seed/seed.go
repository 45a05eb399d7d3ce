package seed

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockbook/internal/gst/domain"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/smallbiznis/stockbook/internal/gst/repository"
	"gorm.io/gorm"
)

// EnsureGSTStates mirrors the jurisdiction registry into gst_states. It is
// safe to run on every startup.
func EnsureGSTStates(ctx context.Context, db *gorm.DB, registry *engine.Registry) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if registry == nil {
		registry = engine.DefaultRegistry()
	}

	now := time.Now().UTC()
	jurisdictions := registry.All()
	rows := make([]domain.GSTState, 0, len(jurisdictions))
	for _, j := range jurisdictions {
		rows = append(rows, domain.GSTState{Code: j.Code, Name: j.Name, CreatedAt: now})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.Provide().UpsertStates(ctx, tx, rows)
	})
}
