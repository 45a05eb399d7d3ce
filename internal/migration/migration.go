package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	auditdomain "github.com/smallbiznis/stockbook/internal/audit/domain"
	customerdomain "github.com/smallbiznis/stockbook/internal/customer/domain"
	gstdomain "github.com/smallbiznis/stockbook/internal/gst/domain"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
	orderdomain "github.com/smallbiznis/stockbook/internal/order/domain"
	productdomain "github.com/smallbiznis/stockbook/internal/product/domain"
	supplierdomain "github.com/smallbiznis/stockbook/internal/supplier/domain"
	"github.com/smallbiznis/stockbook/pkg/db"
	"gorm.io/gorm"
)

// Models lists every persisted type in creation order.
func Models() []any {
	return []any{
		&gstdomain.GSTState{},
		&productdomain.Product{},
		&inventorydomain.StockLevel{},
		&customerdomain.Customer{},
		&supplierdomain.Supplier{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&auditdomain.AuditLog{},
	}
}

// Migrate brings the schema up to date. Postgres runs the versioned SQL
// migrations; MySQL and SQLite are migrated from the gorm models.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if conn.Dialector.Name() != db.DialectPostgres {
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

// RunMigrations applies the embedded SQL migrations to a Postgres database.
func RunMigrations(sqlDB *sql.DB) error {
	if sqlDB == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}
