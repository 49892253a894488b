/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version     string    `bun:"version,pk,type:varchar(32)"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes one migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	// NoTx runs Up directly on the database, for steps that manage their own transactions.
	NoTx bool
}

var (
	extraMigrationsMu sync.RWMutex
	extraMigrations   []MigrationItem
)

// RegisterMigration adds a versioned step that runs after the built-in table creation.
func RegisterMigration(item MigrationItem) {
	extraMigrationsMu.Lock()
	defer extraMigrationsMu.Unlock()
	extraMigrations = append(extraMigrations, item)
}

// MigrationManager applies migrations once each, recording them in schema_migrations.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	config *Config
}

// NewMigrationManager constructs a manager; a nil config means DefaultConfig.
func NewMigrationManager(db *bun.DB, logger Logger, cfg *Config) *MigrationManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{db: db, logger: logger, config: cfg}
}

// RunMigrations creates the tracking table and executes pending migrations in version order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}
	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	for _, migration := range mm.getAllMigrations() {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}
	mm.logger.Info("Database migrations completed")
	return nil
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	migrations := []MigrationItem{{
		Version:     "001",
		Name:        "create_base_tables",
		Description: "Create one table per registered model",
		Up:          createBaseTables,
	}}
	extraMigrationsMu.RLock()
	migrations = append(migrations, extraMigrations...)
	extraMigrationsMu.RUnlock()
	if mm.config.Migrate.EnableForeignKey {
		migrations = append(migrations, MigrationItem{
			Version:     "900",
			Name:        "add_foreign_keys",
			Description: "Add reference constraints",
			Up:          mm.addForeignKeys,
		})
	}
	if mm.config.Init.SeedOnMigration {
		migrations = append(migrations, MigrationItem{
			Version:     "999",
			Name:        "seed_initial_data",
			Description: "Seed initial data",
			Up:          mm.seedInitialData,
			NoTx:        true,
		})
	}
	sort.SliceStable(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	record := &Migration{
		Version:     migration.Version,
		Name:        migration.Name,
		AppliedAt:   time.Now(),
		Description: migration.Description,
	}
	if migration.NoTx {
		if err = migration.Up(ctx, mm.db); err == nil {
			_, err = mm.db.NewInsert().Model(record).Exec(ctx)
		}
	} else {
		err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := migration.Up(ctx, tx); err != nil {
				return err
			}
			_, err := tx.NewInsert().Model(record).Exec(ctx)
			return err
		})
	}
	if err != nil {
		return err
	}
	mm.logger.Info("Migration executed", "version", migration.Version, "name", migration.Name)
	return nil
}

func createBaseTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %T: %w", model, err)
		}
	}
	return nil
}

func (mm *MigrationManager) addForeignKeys(ctx context.Context, db bun.IDB) error {
	fkm, err := LoadForeignKeyManager(mm.logger, mm.config.Migrate.ForeignKeyFile)
	if err != nil {
		return err
	}
	if errs := fkm.ValidateConstraints(); len(errs) > 0 {
		for _, e := range errs {
			mm.logger.Warn("Foreign key constraint validation failed", "error", e.Error())
		}
		return fmt.Errorf("foreign key constraint validation failed, %d errors in total", len(errs))
	}
	return fkm.AddAllForeignKeys(ctx, db)
}

func (mm *MigrationManager) seedInitialData(ctx context.Context, _ bun.IDB) error {
	return mm.InitData(ctx)
}

// InitData executes the SQL seed files for the configured environment.
func (mm *MigrationManager) InitData(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlManager := NewSQLInitManager(mm.db, mm.config.Init.Environment, mm.logger)
	if mm.config.Init.Filepath != "" {
		sqlManager.SetSQLRootPath(mm.config.Init.Filepath)
	}
	if err := sqlManager.ExecuteInitialization(ctx); err != nil {
		return fmt.Errorf("SQL file initialization failed: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().Model(&migrations).Order("version ASC").Scan(ctx)
	return migrations, err
}
