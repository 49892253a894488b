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
	"github.com/tomoncle/workforce/types"
	"github.com/uptrace/bun"
)

// JobRepository persists jobs together with their job_tasks association.
type JobRepository interface {
	Repository[domain.Job]

	// FindAllWithEagerRelationships pages jobs with Tasks resolved inline.
	FindAllWithEagerRelationships(ctx context.Context, page *types.Pageable) (*types.Page[domain.Job], error)

	// FindOneWithEagerRelationships returns ErrNotFound for unknown identifiers.
	FindOneWithEagerRelationships(ctx context.Context, id string) (*domain.Job, error)
}

type jobRepository struct {
	*baseRepositoryImpl[domain.Job]
}

func NewJobRepository(db *bun.DB) JobRepository {
	return &jobRepository{baseRepositoryImpl: newBaseRepository[domain.Job](db)}
}

// WithTx binds the repository to tx; Save and the deletes keep their job_tasks
// handling and run under a savepoint.
func (r *jobRepository) WithTx(tx bun.Tx) Repository[domain.Job] {
	return &jobRepository{baseRepositoryImpl: r.withTx(tx)}
}

func withTasks(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Tasks", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.id ASC")
	})
}

// Save writes the job row and replaces its task associations in one transaction.
// Every referenced task must already exist.
func (r *jobRepository) Save(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	if job == nil {
		return nil, fmt.Errorf("save Job: nil entity")
	}
	taskIDs := job.TaskIDs()
	err := r.idb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(taskIDs) > 0 {
			n, err := tx.NewSelect().Model((*domain.Task)(nil)).Where("id IN (?)", bun.In(taskIDs)).Count(ctx)
			if err != nil {
				return fmt.Errorf("check tasks: %w", err)
			}
			if n != len(taskIDs) {
				return &domain.FieldError{Field: "tasks", Message: "references an unknown task"}
			}
		}
		if _, err := r.withTx(tx).Save(ctx, job); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*domain.JobTask)(nil)).Where("job_id = ?", job.ID).Exec(ctx); err != nil {
			return fmt.Errorf("clear job tasks: %w", err)
		}
		if len(taskIDs) == 0 {
			return nil
		}
		rows := make([]*domain.JobTask, 0, len(taskIDs))
		for _, id := range taskIDs {
			rows = append(rows, &domain.JobTask{JobID: job.ID, TaskID: id})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert job tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *jobRepository) FindAllWithEagerRelationships(ctx context.Context, page *types.Pageable) (*types.Page[domain.Job], error) {
	return r.findPage(ctx, page, withTasks)
}

func (r *jobRepository) FindOneWithEagerRelationships(ctx context.Context, id string) (*domain.Job, error) {
	return r.findByID(ctx, id, withTasks)
}

func (r *jobRepository) DeleteByID(ctx context.Context, id string) error {
	return r.idb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*domain.JobTask)(nil)).Where("job_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete job tasks of job %s: %w", id, err)
		}
		return r.withTx(tx).DeleteByID(ctx, id)
	})
}

func (r *jobRepository) DeleteAll(ctx context.Context) error {
	return r.idb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*domain.JobTask)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("delete job tasks: %w", err)
		}
		return r.withTx(tx).DeleteAll(ctx)
	})
}
