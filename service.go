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

package workforce

import (
	"context"

	"github.com/tomoncle/workforce/domain"
	"github.com/tomoncle/workforce/repository"
	"github.com/tomoncle/workforce/types"
	"github.com/tomoncle/workforce/utils"
	"github.com/uptrace/bun"
)

var log = utils.NewLogger("SERVICE")

type Service[T any] interface {
	// Save persists a new entity or overwrites an existing one.
	Save(ctx context.Context, entity *T) (*T, error)

	// FindAll returns every entity, ordered by the given properties.
	FindAll(ctx context.Context, sort ...types.Order) ([]*T, error)

	// FindPage returns one page of entities.
	FindPage(ctx context.Context, page *types.Pageable) (*types.Page[T], error)

	// FindOne returns repository.ErrNotFound for unknown identifiers.
	FindOne(ctx context.Context, id string) (*T, error)

	// Exists reports whether an entity with the identifier is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes an entity; unknown identifiers are ignored.
	Delete(ctx context.Context, id string) error
}

type baseServiceImpl[T any] struct {
	repo   repository.Repository[T]
	entity string
}

// NewService returns a Service delegating to repo. entity names the type in logs.
func NewService[T any](repo repository.Repository[T], entity string) Service[T] {
	return newBaseServiceImpl[T](repo, entity)
}

func newBaseServiceImpl[T any](repo repository.Repository[T], entity string) *baseServiceImpl[T] {
	return &baseServiceImpl[T]{repo: repo, entity: entity}
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, entity *T) (*T, error) {
	log.Debugf("Request to save %s : %+v", s.entity, entity)
	return s.repo.Save(ctx, entity)
}

func (s *baseServiceImpl[T]) FindAll(ctx context.Context, sort ...types.Order) ([]*T, error) {
	log.Debugf("Request to get all %s entities", s.entity)
	return s.repo.FindAll(ctx, sort...)
}

func (s *baseServiceImpl[T]) FindPage(ctx context.Context, page *types.Pageable) (*types.Page[T], error) {
	log.Debugf("Request to get a page of %s entities : %+v", s.entity, page)
	return s.repo.FindPage(ctx, page)
}

func (s *baseServiceImpl[T]) FindOne(ctx context.Context, id string) (*T, error) {
	log.Debugf("Request to get %s : %s", s.entity, id)
	return s.repo.FindByID(ctx, id)
}

func (s *baseServiceImpl[T]) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.ExistsByID(ctx, id)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id string) error {
	log.Debugf("Request to delete %s : %s", s.entity, id)
	return s.repo.DeleteByID(ctx, id)
}

// JobService resolves Job.Tasks for single lookups and, on request, for pages.
type JobService interface {
	Service[domain.Job]
	FindAllWithEagerRelationships(ctx context.Context, page *types.Pageable) (*types.Page[domain.Job], error)
	FindOneWithEagerRelationships(ctx context.Context, id string) (*domain.Job, error)
}

type jobServiceImpl struct {
	*baseServiceImpl[domain.Job]
	jobs repository.JobRepository
}

func NewJobService(repo repository.JobRepository) JobService {
	return &jobServiceImpl{baseServiceImpl: newBaseServiceImpl[domain.Job](repo, "Job"), jobs: repo}
}

// FindOne always resolves tasks.
func (s *jobServiceImpl) FindOne(ctx context.Context, id string) (*domain.Job, error) {
	return s.FindOneWithEagerRelationships(ctx, id)
}

func (s *jobServiceImpl) FindOneWithEagerRelationships(ctx context.Context, id string) (*domain.Job, error) {
	log.Debugf("Request to get Job : %s", id)
	return s.jobs.FindOneWithEagerRelationships(ctx, id)
}

func (s *jobServiceImpl) FindAllWithEagerRelationships(ctx context.Context, page *types.Pageable) (*types.Page[domain.Job], error) {
	log.Debugf("Request to get a page of Jobs with eager relationships : %+v", page)
	return s.jobs.FindAllWithEagerRelationships(ctx, page)
}

// Services groups the service of every entity over one database.
type Services struct {
	Regions      Service[domain.Region]
	Countries    Service[domain.Country]
	Locations    Service[domain.Location]
	Departments  Service[domain.Department]
	Tasks        Service[domain.Task]
	Employees    Service[domain.Employee]
	Jobs         JobService
	JobHistories Service[domain.JobHistory]
}

func NewServices(db *bun.DB) *Services {
	return &Services{
		Regions:      NewService(repository.NewRegionRepository(db), "Region"),
		Countries:    NewService(repository.NewCountryRepository(db), "Country"),
		Locations:    NewService(repository.NewLocationRepository(db), "Location"),
		Departments:  NewService(repository.NewDepartmentRepository(db), "Department"),
		Tasks:        NewService[domain.Task](repository.NewTaskRepository(db), "Task"),
		Employees:    NewService(repository.NewEmployeeRepository(db), "Employee"),
		Jobs:         NewJobService(repository.NewJobRepository(db)),
		JobHistories: NewService(repository.NewJobHistoryRepository(db), "JobHistory"),
	}
}
