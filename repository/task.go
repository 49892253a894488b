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

package repository

import (
	"context"
	"fmt"

	"github.com/tomoncle/workforce/domain"
	"github.com/uptrace/bun"
)

// TaskRepository also removes the job associations of deleted tasks, since
// sqlite databases carry no foreign keys to cascade them.
type TaskRepository interface {
	Repository[domain.Task]
}

type taskRepository struct {
	*baseRepositoryImpl[domain.Task]
}

func NewTaskRepository(db *bun.DB) TaskRepository {
	return &taskRepository{baseRepositoryImpl: newBaseRepository[domain.Task](db)}
}

func (r *taskRepository) WithTx(tx bun.Tx) Repository[domain.Task] {
	return &taskRepository{baseRepositoryImpl: r.withTx(tx)}
}

func (r *taskRepository) DeleteByID(ctx context.Context, id string) error {
	return r.idb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*domain.JobTask)(nil)).Where("task_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete job tasks of task %s: %w", id, err)
		}
		return r.withTx(tx).DeleteByID(ctx, id)
	})
}

func (r *taskRepository) DeleteAll(ctx context.Context) error {
	return r.idb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*domain.JobTask)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("delete job tasks: %w", err)
		}
		return r.withTx(tx).DeleteAll(ctx)
	})
}
