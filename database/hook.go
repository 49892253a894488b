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
	"errors"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes the query hooks, used while migrations run.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

var (
	selectColor = color.New(color.FgGreen).SprintFunc()
	insertColor = color.New(color.FgBlue).SprintFunc()
	updateColor = color.New(color.FgYellow).SprintFunc()
	deleteColor = color.New(color.FgMagenta).SprintFunc()
	otherColor  = color.New(color.FgRed).SprintFunc()
	errorColor  = color.New(color.BgRed, color.FgWhite).SprintFunc()
)

func colorizeQuery(event *bun.QueryEvent) string {
	switch event.Operation() {
	case "SELECT":
		return selectColor(event.Query)
	case "INSERT":
		return insertColor(event.Query)
	case "UPDATE":
		return updateColor(event.Query)
	case "DELETE":
		return deleteColor(event.Query)
	default:
		return otherColor(event.Query)
	}
}

// SlowQueryHook logs queries slower than the threshold and queries that failed.
// sql.ErrNoRows is an expected outcome of lookups and is not reported.
type SlowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(slowTime time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{slowTime: slowTime, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() || h.logger == nil {
		return
	}
	duration := time.Since(event.StartTime)
	if event.Err != nil {
		if errors.Is(event.Err, sql.ErrNoRows) || errors.Is(event.Err, sql.ErrTxDone) {
			return
		}
		h.logger.Warn("Database query failed",
			"duration", duration.Round(time.Microsecond),
			"query", colorizeQuery(event),
			"error", errorColor(" "+event.Err.Error()+" "),
		)
		return
	}
	if h.slowTime > 0 && duration > h.slowTime {
		h.logger.Warn("Database slow query detected",
			"duration", duration.Round(time.Microsecond),
			"slow_threshold", h.slowTime,
			"query", colorizeQuery(event),
		)
	}
}
