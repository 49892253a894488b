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
	"errors"

	"github.com/tomoncle/workforce/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

var (
	// ErrNotFound is returned by FindByID when no record carries the identifier.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidSort is returned when a sort property does not name a column.
	ErrInvalidSort = errors.New("invalid sort property")
)

// CrudRepository defines the persistence operations every entity supports.
type CrudRepository[T any] interface {
	// Save inserts a record without identifier, generating one, and fully
	// overwrites the stored record otherwise.
	Save(ctx context.Context, entity *T) (*T, error)

	FindAll(ctx context.Context, sort ...types.Order) ([]*T, error)

	FindByID(ctx context.Context, id string) (*T, error)

	ExistsByID(ctx context.Context, id string) (bool, error)

	Count(ctx context.Context) (int, error)

	// DeleteByID is a no-op for unknown identifiers.
	DeleteByID(ctx context.Context, id string) error

	DeleteAll(ctx context.Context) error
}

// PageQueryRepository defines pagination over a collection.
type PageQueryRepository[T any] interface {
	FindPage(ctx context.Context, page *types.Pageable) (*types.Page[T], error)
}

// TransactionRepository binds a repository to a running transaction.
type TransactionRepository[T any] interface {
	WithTx(tx bun.Tx) Repository[T]
}

// Repository combines CRUD, pagination and transactional binding and exposes
// bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewDelete() *bun.DeleteQuery
}
