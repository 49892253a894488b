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

package database_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/workforce/database"
	"github.com/tomoncle/workforce/database/dbtest"
	"github.com/tomoncle/workforce/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestMigrationsCreateTablesOnce(t *testing.T) {
	manager := dbtest.NewManager(t)
	ctx := context.Background()
	db := manager.GetDB()

	mm := database.NewMigrationManager(db, nil, dbtest.Config())
	applied, err := mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "001", applied[0].Version)
	assert.Equal(t, "002", applied[1].Version)

	// a second run is a no-op
	require.NoError(t, manager.RunMigrations(ctx))
	applied, err = mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 2)

	for _, model := range []interface{}{(*domain.Region)(nil), (*domain.JobTask)(nil), (*domain.JobHistory)(nil)} {
		n, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

func TestRegisteredModelsAreOrdered(t *testing.T) {
	models := database.GetRegisteredModels()
	require.NotEmpty(t, models)
	for i := 1; i < len(models); i++ {
		assert.LessOrEqual(t, models[i-1].Priority(), models[i].Priority())
	}

	count := len(models)
	database.RegisterModel(models[0].Instance(), models[0].Priority())
	assert.Len(t, database.GetRegisteredModels(), count)
}

func TestHealthCheck(t *testing.T) {
	manager := dbtest.NewManager(t)
	status := manager.HealthCheck(context.Background())
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, "sqlite", status.Database)

	require.NoError(t, manager.Disconnect())
	status = manager.HealthCheck(context.Background())
	assert.False(t, status.Healthy)
	assert.NotEmpty(t, status.LastError)
}

func TestJoinModelRegisteredBeforeOwner(t *testing.T) {
	position := func(model interface{}) int {
		for i, m := range database.RegisteredModelInstances() {
			if fmt.Sprintf("%T", m) == fmt.Sprintf("%T", model) {
				return i
			}
		}
		return -1
	}
	joinAt, ownerAt := position((*domain.JobTask)(nil)), position((*domain.Job)(nil))
	require.NotEqual(t, -1, joinAt)
	require.NotEqual(t, -1, ownerAt)
	assert.Less(t, joinAt, ownerAt)

	sqlDB, err := sql.Open(sqliteshim.ShimName, database.SQLiteDSN(&database.ConnectionConfig{InMemory: true, DBName: "registration"}))
	require.NoError(t, err)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	assert.NotPanics(t, func() { db.RegisterModel(database.RegisteredModelInstances()...) })
}

func TestReconnectKeepsSharedHandle(t *testing.T) {
	manager := dbtest.NewManager(t)
	ctx := context.Background()
	held := manager.GetDB()
	_, err := held.NewInsert().Model(&domain.Region{ID: "r-kept", RegionName: "Europe"}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, manager.Reconnect(ctx))
	assert.Same(t, held, manager.GetDB())
	exists, err := held.NewSelect().Model((*domain.Region)(nil)).Where("id = ?", "r-kept").Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, manager.HealthCheck(ctx).Healthy)

	require.NoError(t, manager.Disconnect())
	require.NoError(t, manager.Reconnect(ctx))
	assert.NotNil(t, manager.GetDB())
	assert.True(t, manager.HealthCheck(ctx).Healthy)
}

func TestSeedFromSQLFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "common"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "environments", "test"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "common", "001_regions.sql"), []byte(
		"-- regions\nINSERT INTO regions (id, region_name)\nVALUES ('r-1', 'Europe');\nINSERT INTO regions (id, region_name) VALUES ('r-2', 'Asia');\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "environments", "test", "001_tasks.sql"), []byte(
		"INSERT INTO tasks (id, title, description) VALUES ('t-1', 'seed', '{{ .ENVIRONMENT }}');\n"), 0o644))

	cfg := dbtest.Config()
	cfg.Init.Filepath = root
	cfg.Init.Environment = "test"
	manager := database.NewDatabaseManager(cfg)
	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))
	require.NoError(t, manager.InitData(ctx))

	db := manager.GetDB()
	n, err := db.NewSelect().Model((*domain.Region)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	task := new(domain.Task)
	require.NoError(t, db.NewSelect().Model(task).Where("id = ?", "t-1").Scan(ctx))
	assert.Equal(t, "test", task.Description)
}

func TestSplitSQLStatements(t *testing.T) {
	stmts := database.SplitSQLStatements("-- c\nSELECT 1;\n\nSELECT\n 2;\nSELECT 3")
	assert.Equal(t, []string{"SELECT 1", "SELECT 2", "SELECT 3"}, stmts)
}

func TestIsSqlError(t *testing.T) {
	cases := []struct {
		err  error
		kind database.SQLError
	}{
		{&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, database.DuplicateKeyErr},
		{&mysql.MySQLError{Number: 1452}, database.ForeignKeyViolationErr},
		{errors.New(`pq: duplicate key value violates unique constraint "regions_pkey"`), database.DuplicateKeyErr},
		{errors.New("UNIQUE constraint failed: regions.id"), database.DuplicateKeyErr},
		{errors.New("FOREIGN KEY constraint failed"), database.ForeignKeyViolationErr},
		{errors.New("no such table: nope"), database.NoTableErr},
		{fmt.Errorf("wrapped: %w", errors.New("NOT NULL constraint failed: departments.department_name")), database.NotNullViolationErr},
	}
	for _, c := range cases {
		is, kind := database.IsSqlError(c.err)
		assert.True(t, is, c.err.Error())
		assert.Equal(t, c.kind, kind, c.err.Error())
	}

	is, _ := database.IsSqlError(errors.New("boom"))
	assert.False(t, is)
	assert.True(t, database.IsDuplicateKey(errors.New("UNIQUE constraint failed: tasks.id")))
}

func TestForeignKeysFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
foreign_keys:
  - table: countries
    column: region_id
    reference_table: regions
    reference_column: id
    on_delete: set null
  - table: jobs
    column: employee_id
    reference_table: employees
    reference_column: id
    on_delete: explode
`), 0o644))

	fkm, err := database.LoadForeignKeyManager(nil, path)
	require.NoError(t, err)
	require.Len(t, fkm.ListAllConstraints(), 2)
	assert.Len(t, fkm.ValidateConstraints(), 1)

	c := fkm.GetConstraintsByTable("COUNTRIES")
	require.Len(t, c, 1)
	assert.Equal(t,
		"ALTER TABLE countries ADD CONSTRAINT fk_countries_region_id FOREIGN KEY (region_id) REFERENCES regions (id) ON DELETE SET NULL",
		c[0].GenerateSQL())
}

func TestForeignKeysFallBackToCode(t *testing.T) {
	fkm, err := database.LoadForeignKeyManager(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, fkm.GetConstraintsByTable("job_tasks"))
	assert.Empty(t, fkm.ValidateConstraints())

	// sqlite cannot alter constraints in; the migration step is skipped
	db := dbtest.New(t)
	assert.NoError(t, fkm.AddAllForeignKeys(context.Background(), db))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:hr?mode=memory&cache=shared", database.SQLiteDSN(&database.ConnectionConfig{DBName: "hr", InMemory: true}))
	assert.Equal(t, "file:hr.db?cache=shared", database.SQLiteDSN(&database.ConnectionConfig{DBName: "hr"}))
}

func TestSupportedTypes(t *testing.T) {
	for _, typ := range []string{"sqlite", "sqlite3", "postgres", "postgresql", "MySQL"} {
		assert.True(t, database.IsSupportedType(typ), typ)
	}
	assert.False(t, database.IsSupportedType("oracle"))
	assert.Contains(t, database.SupportedTypes(), "postgresql")

	_, err := database.NewDatabaseFactory().CreateFromConfig(&database.Config{
		Connection: database.ConnectionConfig{Type: "oracle"},
	})
	assert.Error(t, err)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_PASSWORD", "")
	cfg := &database.ConnectionConfig{Type: "sqlite", Port: 1, Password: "secret"}
	database.OverrideFromEnv(cfg)
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "", cfg.Password)
}

func TestProcessWideDatabase(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, database.GetDB())
	assert.Error(t, database.RunMigrations(ctx))
	assert.Error(t, database.InitData(ctx))

	cfg := dbtest.Config()
	cfg.Migrate.MigrateOnStartup = true
	db, err := database.InitDB(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB() })

	assert.Same(t, db, database.GetDB())
	assert.NotNil(t, database.GetDatabaseFactory())
	assert.True(t, database.GetHealthStatus(ctx).Healthy)
	assert.Equal(t, 1, database.GetDatabaseStats().MaxOpenConns)
	require.NoError(t, database.RunMigrations(ctx))

	exists, err := db.NewSelect().Model((*domain.Region)(nil)).Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, database.CloseDB())
	assert.Nil(t, database.GetDB())
	assert.False(t, database.GetHealthStatus(ctx).Healthy)
	assert.Error(t, database.RunMigrations(ctx))
}
