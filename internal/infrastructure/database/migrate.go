package database

import (
	"errors"
	"fmt"

	"appointment-scheduler/config"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models lists every table the scheduler owns, in dependency order
func Models() []interface{} {
	return []interface{}{
		&entity.User{},
		&entity.DoctorProfile{},
		&entity.Appointment{},
		&entity.AuditLog{},
	}
}

// MigrateUp brings the schema to the latest version.
// PostgreSQL runs the versioned SQL files; SQLite is auto-migrated from the entities.
func MigrateUp(db *gorm.DB, cfg config.DBConfig) error {
	if cfg.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		logrus.Info("SQLite schema migrated")
		return nil
	}

	m, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	logrus.Infof("Database migrated to version %d (dirty=%t)", version, dirty)
	return nil
}

// MigrateDown rolls back the last applied migration
func MigrateDown(db *gorm.DB, cfg config.DBConfig) error {
	if cfg.Driver == config.DriverSQLite {
		models := Models()
		for i := len(models) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(models[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
		logrus.Info("SQLite schema dropped")
		return nil
	}

	m, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}

	logrus.Info("Rolled back one migration")
	return nil
}

func newMigrate(cfg config.DBConfig) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, PostgresURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}
