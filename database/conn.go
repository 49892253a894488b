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
	"errors"
	"fmt"
	"sync"

	"github.com/uptrace/bun"
)

var errNotInitialized = errors.New("database not initialized")

// process-wide database opened by InitDB and released by CloseDB
var (
	globalMu      sync.RWMutex
	globalFactory *BaseDatabaseFactory
)

func current() *BaseDatabaseFactory {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalFactory
}

func GetDB() *bun.DB {
	if f := current(); f != nil {
		return f.GetDB()
	}
	return nil
}

func GetDatabaseManager() AbstractDatabaseManager {
	if f := current(); f != nil {
		return f.GetManager()
	}
	return nil
}

func GetDatabaseFactory() *BaseDatabaseFactory {
	return current()
}

// InitDB opens the process-wide database, migrating when the config asks for it.
func InitDB(ctx context.Context, cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	return InitDatabaseWithOptions(ctx, cfg, cfg.Migrate.MigrateOnStartup)
}

// InitDatabaseWithOptions replaces any database opened earlier.
func InitDatabaseWithOptions(ctx context.Context, cfg *Config, runMigrations bool) (*bun.DB, error) {
	factory := NewDatabaseFactory()
	if _, err := factory.CreateFromConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := factory.InitializeDatabase(ctx, runMigrations); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	globalMu.Lock()
	previous := globalFactory
	globalFactory = factory
	globalMu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}
	return factory.GetDB(), nil
}

func CloseDB() error {
	globalMu.Lock()
	f := globalFactory
	globalFactory = nil
	globalMu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// GetHealthStatus pings the process-wide database.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if f := current(); f != nil {
		return f.GetHealthStatus(ctx)
	}
	return &HealthStatus{LastError: errNotInitialized.Error()}
}

func GetDatabaseStats() *DBStats {
	if f := current(); f != nil {
		return f.GetStats()
	}
	return &DBStats{}
}

// RunMigrations migrates the process-wide database.
func RunMigrations(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return errNotInitialized
	}
	return manager.RunMigrations(ctx)
}

// InitData seeds the process-wide database for the configured environment.
func InitData(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return errNotInitialized
	}
	return manager.InitData(ctx)
}
