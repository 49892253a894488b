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

// Package dbtest opens a migrated in-memory sqlite database per test.
package dbtest

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/workforce/database"
	_ "github.com/tomoncle/workforce/domain"
	"github.com/uptrace/bun"
)

// Config returns an in-memory sqlite configuration with a unique database name.
func Config() *database.Config {
	cfg := database.DefaultConfig()
	cfg.Connection.DBName = "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	cfg.Connection.InMemory = true
	cfg.Connection.HealthCheckInterval = 0
	cfg.Init.SeedOnMigration = false
	return cfg
}

// NewManager connects and migrates a fresh database, closing it when the test ends.
func NewManager(t testing.TB) database.AbstractDatabaseManager {
	t.Helper()
	manager := database.NewDatabaseManager(Config())
	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))
	return manager
}

// New returns the bun handle of NewManager.
func New(t testing.TB) *bun.DB {
	t.Helper()
	return NewManager(t).GetDB()
}
