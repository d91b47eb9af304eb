package sqlite

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite/migrations"
)

// migrator binds the embedded migrations to this store's connection. The
// instance is never closed: closing it would close the shared *sql.DB.
func (m *Store) migrator() (*migrate.Migrate, error) {
	driver, err := sqlite.WithInstance(m.db, &sqlite.Config{})
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").Wrapf(err, "open migration driver")
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").Wrapf(err, "open embedded migrations")
	}

	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").Wrapf(err, "create migrator")
	}
	return instance, nil
}

// ApplyMigrations brings the schema up to the newest embedded migration.
// An up-to-date schema is not an error.
func (m *Store) ApplyMigrations() error {
	instance, err := m.migrator()
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_FAILED").Wrapf(err, "apply migrations")
	}
	return nil
}

// SchemaVersion reports the applied migration version. dirty is set when a
// migration failed halfway and needs manual repair.
func (m *Store) SchemaVersion() (version uint, dirty bool, err error) {
	instance, err := m.migrator()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err = instance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("MIGRATION_FAILED").Wrapf(err, "read schema version")
	}
	return version, dirty, nil
}
