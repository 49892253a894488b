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
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// driver binds a configured database type to its database/sql driver and bun dialect.
type driver struct {
	name    string
	dsn     func(cfg *ConnectionConfig) string
	dialect func() schema.Dialect
}

var drivers = map[string]driver{
	"mysql": {
		name:    "mysql",
		dsn:     mysqlDSN,
		dialect: func() schema.Dialect { return mysqldialect.New() },
	},
	"postgres": {
		name:    "postgres",
		dsn:     postgresDSN,
		dialect: func() schema.Dialect { return pgdialect.New() },
	},
	"sqlite": {
		name:    sqliteshim.ShimName,
		dsn:     SQLiteDSN,
		dialect: func() schema.Dialect { return sqlitedialect.New() },
	},
}

var driverAliases = map[string]string{"postgresql": "postgres", "sqlite3": "sqlite"}

func lookupDriver(typ string) (driver, bool) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if alias, ok := driverAliases[typ]; ok {
		typ = alias
	}
	d, ok := drivers[typ]
	return d, ok
}

// IsSupportedType reports whether typ names a database this package can open.
func IsSupportedType(typ string) bool {
	_, ok := lookupDriver(typ)
	return ok
}

// SupportedTypes lists the canonical database types and their aliases.
func SupportedTypes() []string {
	types := make([]string, 0, len(drivers)+len(driverAliases))
	for t := range drivers {
		types = append(types, t)
	}
	for a := range driverAliases {
		types = append(types, a)
	}
	sort.Strings(types)
	return types
}

func isSQLite(cfg *ConnectionConfig) bool {
	d, ok := lookupDriver(cfg.Type)
	return ok && d.name == sqliteshim.ShimName
}

func mysqlDSN(cfg *ConnectionConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout)
}

func postgresDSN(cfg *ConnectionConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		sslMode, int(cfg.ConnectTimeout.Seconds()))
}

// SQLiteDSN returns a file DSN, or a named shared-cache memory DSN when InMemory is set.
func SQLiteDSN(cfg *ConnectionConfig) string {
	if cfg.InMemory {
		return fmt.Sprintf("file:%s?mode=memory&cache=shared", cfg.DBName)
	}
	return fmt.Sprintf("file:%s.db?cache=shared", cfg.DBName)
}

type defaultDatabaseManager struct {
	config *Config
	logger Logger

	mu sync.RWMutex
	db *bun.DB

	monitorMu     sync.Mutex
	stopMonitor   context.CancelFunc
	monitorDone   chan struct{}
	reconnectRuns int
}

// NewDatabaseManager returns a bun-backed manager. A nil config means DefaultConfig.
func NewDatabaseManager(config *Config) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConfig()
	}
	return &defaultDatabaseManager{config: config, logger: GetLogger()}
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	if dm.db != nil {
		dm.mu.Unlock()
		return nil
	}
	err := dm.open(ctx)
	dm.mu.Unlock()
	if err != nil {
		return err
	}

	cfg := &dm.config.Connection
	if cfg.HealthCheckInterval > 0 {
		dm.startMonitor(cfg.HealthCheckInterval)
	}
	dm.logger.Info("Database connected", "type", cfg.Type, "host", cfg.Host, "dbname", cfg.DBName)
	return nil
}

// open dials and verifies a new handle. The caller holds dm.mu.
func (dm *defaultDatabaseManager) open(ctx context.Context) error {
	cfg := &dm.config.Connection
	drv, ok := lookupDriver(cfg.Type)
	if !ok {
		return fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}

	sqlDB, err := sql.Open(drv.name, drv.dsn(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	applyPoolSettings(sqlDB, cfg)

	db := bun.NewDB(sqlDB, drv.dialect())
	if cfg.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true), bundebug.FromEnv("BUNDEBUG")))
	}
	db.AddQueryHook(NewSlowQueryHook(cfg.SlowQueryTime, dm.logger))

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("database connection test failed: %w", err)
	}

	// m2m join models must be known before any relation query runs.
	db.RegisterModel(RegisteredModelInstances()...)

	dm.db = db
	return nil
}

func applyPoolSettings(sqlDB *sql.DB, cfg *ConnectionConfig) {
	if isSQLite(cfg) && cfg.InMemory {
		// a memory database lives only as long as its last connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// closeLocked releases the handle. The caller holds dm.mu.
func (dm *defaultDatabaseManager) closeLocked() error {
	if dm.db == nil {
		return nil
	}
	err := dm.db.Close()
	dm.db = nil
	return err
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.stopMonitorLoop()

	dm.mu.Lock()
	err := dm.closeLocked()
	dm.mu.Unlock()
	if err != nil {
		dm.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	dm.logger.Info("Database connection closed")
	return nil
}

// Reconnect re-establishes connectivity and leaves the health monitor running.
// A live handle is kept: repositories and the stats collector hold it, and
// database/sql replaces broken pooled connections on the next use. A new
// handle is opened only after Disconnect.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	dm.logger.Info("Attempting to reconnect to the database")
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.db == nil {
		return dm.open(ctx)
	}
	if err := dm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database reconnect failed: %w", err)
	}
	return nil
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	if db := dm.GetDB(); db != nil {
		return db.DB
	}
	return nil
}

// HealthCheck pings outside the lock so a slow database does not block readers.
func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start, Database: dm.config.Connection.Type}

	db := dm.GetDB()
	if db == nil {
		status.LastError = "Database not initialized"
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := db.PingContext(pingCtx)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy = true
		status.Connected = true
	}

	stats := db.DB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

func (dm *defaultDatabaseManager) startMonitor(interval time.Duration) {
	dm.monitorMu.Lock()
	defer dm.monitorMu.Unlock()
	if dm.stopMonitor != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	dm.stopMonitor, dm.monitorDone = cancel, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				checkCtx, cancelCheck := context.WithTimeout(ctx, 10*time.Second)
				status := dm.HealthCheck(checkCtx)
				cancelCheck()
				if status.Healthy {
					dm.reconnectRuns = 0
				} else if dm.config.Connection.EnableReconnect {
					dm.tryReconnect(ctx)
				}
			}
		}
	}()
}

func (dm *defaultDatabaseManager) stopMonitorLoop() {
	dm.monitorMu.Lock()
	cancel, done := dm.stopMonitor, dm.monitorDone
	dm.stopMonitor, dm.monitorDone = nil, nil
	dm.monitorMu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// tryReconnect runs on the monitor goroutine only.
func (dm *defaultDatabaseManager) tryReconnect(ctx context.Context) {
	cfg := &dm.config.Connection
	if dm.reconnectRuns >= cfg.MaxReconnectTries {
		dm.logger.Error("Max reconnect attempts reached", "tries", dm.reconnectRuns)
		return
	}
	dm.reconnectRuns++
	dm.logger.Info("Starting database reconnect", "try", dm.reconnectRuns)

	select {
	case <-ctx.Done():
		return
	case <-time.After(cfg.ReconnectInterval):
	}

	reconnectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := dm.Reconnect(reconnectCtx); err != nil {
		dm.logger.Error("Reconnect failed", "error", err, "try", dm.reconnectRuns)
		return
	}
	dm.logger.Info("Reconnect succeeded")
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	sqlDB := dm.GetSQLDB()
	if sqlDB == nil {
		return &DBStats{}
	}
	s := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      s.MaxOpenConnections,
		OpenConns:         s.OpenConnections,
		InUse:             s.InUse,
		Idle:              s.Idle,
		WaitCount:         s.WaitCount,
		WaitDuration:      s.WaitDuration,
		MaxIdleClosed:     s.MaxIdleClosed,
		MaxIdleTimeClosed: s.MaxIdleTimeClosed,
		MaxLifetimeClosed: s.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) migrations() (*MigrationManager, error) {
	db := dm.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, dm.logger, dm.config), nil
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	mm, err := dm.migrations()
	if err != nil {
		return err
	}
	return mm.RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) InitData(ctx context.Context) error {
	mm, err := dm.migrations()
	if err != nil {
		return err
	}
	return mm.InitData(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
