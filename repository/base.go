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
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/tomoncle/workforce/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db   *bun.DB
	idb  bun.IDB
	meta *entityMeta
}

// NewRepository returns a generic repository for *T, which must implement
// types.Identifiable.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return newBaseRepository[T](db)
}

func newBaseRepository[T any](db *bun.DB) *baseRepositoryImpl[T] {
	if _, ok := any(new(T)).(types.Identifiable); !ok {
		panic(fmt.Sprintf("repository: *%T does not implement types.Identifiable", *new(T)))
	}
	return &baseRepositoryImpl[T]{db: db, idb: db, meta: metaOf(reflect.TypeOf((*T)(nil)).Elem())}
}

func (r *baseRepositoryImpl[T]) WithTx(tx bun.Tx) Repository[T] {
	return r.withTx(tx)
}

func (r *baseRepositoryImpl[T]) withTx(tx bun.Tx) *baseRepositoryImpl[T] {
	return &baseRepositoryImpl[T]{db: r.db, idb: tx, meta: r.meta}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.idb.NewSelect() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.idb.NewDelete() }

func (r *baseRepositoryImpl[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("save %s: nil entity", r.meta.name)
	}
	ident := any(entity).(types.Identifiable)
	if ident.GetID() == "" {
		ident.SetID(uuid.NewString())
		if _, err := r.idb.NewInsert().Model(entity).Exec(ctx); err != nil {
			return nil, fmt.Errorf("insert %s: %w", r.meta.name, err)
		}
		return entity, nil
	}
	if err := r.upsert(ctx, entity); err != nil {
		return nil, fmt.Errorf("upsert %s %s: %w", r.meta.name, ident.GetID(), err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) upsert(ctx context.Context, entity *T) error {
	insert := r.idb.NewInsert().Model(entity)
	columns := r.meta.dataColumns
	switch {
	case len(columns) == 0:
		_, err := insert.Ignore().Exec(ctx)
		return err
	case r.db.HasFeature(feature.InsertOnConflict):
		insert = insert.On("CONFLICT (id) DO UPDATE")
		for _, c := range columns {
			insert = insert.Set("? = EXCLUDED.?", bun.Ident(c), bun.Ident(c))
		}
		_, err := insert.Exec(ctx)
		return err
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		parts := make([]string, len(columns))
		for i, c := range columns {
			parts[i] = fmt.Sprintf("`%s` = VALUES(`%s`)", c, c)
		}
		_, err := insert.On("DUPLICATE KEY UPDATE " + strings.Join(parts, ", ")).Exec(ctx)
		return err
	default:
		return r.upsertFallback(ctx, entity)
	}
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, entity *T) error {
	res, err := r.idb.NewUpdate().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = r.idb.NewInsert().Model(entity).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) FindAll(ctx context.Context, sort ...types.Order) ([]*T, error) {
	return r.findAll(ctx, sort)
}

func (r *baseRepositoryImpl[T]) findAll(ctx context.Context, sort []types.Order, opts ...func(*bun.SelectQuery) *bun.SelectQuery) ([]*T, error) {
	entities := make([]*T, 0)
	query := r.idb.NewSelect().Model(&entities)
	query, err := r.applyOrders(query, sort)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		query = opt(query)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("find %s: %w", r.meta.name, err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) FindPage(ctx context.Context, page *types.Pageable) (*types.Page[T], error) {
	return r.findPage(ctx, page)
}

func (r *baseRepositoryImpl[T]) findPage(ctx context.Context, page *types.Pageable, opts ...func(*bun.SelectQuery) *bun.SelectQuery) (*types.Page[T], error) {
	if page == nil {
		page = types.NewPageable(0, types.DefaultPageSize)
	}
	result := types.NewPage[T](page)
	orders := page.GetOrders()
	if len(orders) == 0 {
		// stable paging needs a total order
		orders = []types.Order{{Property: "id", Direction: types.Asc}}
	}

	entities := make([]*T, 0)
	query := r.idb.NewSelect().Model(&entities)
	query, err := r.applyOrders(query, orders)
	if err != nil {
		return nil, err
	}
	total, err := r.idb.NewSelect().Model((*T)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", r.meta.name, err)
	}
	result.Total = total
	if total == 0 || page.GetOffset() >= total {
		return result, nil
	}
	for _, opt := range opts {
		query = opt(query)
	}
	if err := query.Offset(page.GetOffset()).Limit(page.GetSize()).Scan(ctx); err != nil {
		return nil, fmt.Errorf("page %s: %w", r.meta.name, err)
	}
	result.Content = entities
	return result, nil
}

func (r *baseRepositoryImpl[T]) applyOrders(query *bun.SelectQuery, orders []types.Order) (*bun.SelectQuery, error) {
	for _, o := range orders {
		column, ok := r.meta.column(o.Property)
		if !ok {
			return nil, fmt.Errorf("%w: %q on %s", ErrInvalidSort, o.Property, r.meta.name)
		}
		if o.Direction == types.Desc {
			query = query.OrderExpr("?TableAlias.? DESC", bun.Ident(column))
		} else {
			query = query.OrderExpr("?TableAlias.? ASC", bun.Ident(column))
		}
	}
	return query, nil
}

func (r *baseRepositoryImpl[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return r.findByID(ctx, id)
}

func (r *baseRepositoryImpl[T]) findByID(ctx context.Context, id string, opts ...func(*bun.SelectQuery) *bun.SelectQuery) (*T, error) {
	entity := new(T)
	query := r.idb.NewSelect().Model(entity).Where("?TableAlias.id = ?", id)
	for _, opt := range opts {
		query = opt(query)
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", r.meta.name, id, ErrNotFound)
		}
		return nil, fmt.Errorf("find %s %s: %w", r.meta.name, id, err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) ExistsByID(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return r.idb.NewSelect().Model((*T)(nil)).Where("id = ?", id).Exists(ctx)
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context) (int, error) {
	return r.idb.NewSelect().Model((*T)(nil)).Count(ctx)
}

func (r *baseRepositoryImpl[T]) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.idb.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.meta.name, id, err)
	}
	return nil
}

func (r *baseRepositoryImpl[T]) DeleteAll(ctx context.Context) error {
	if _, err := r.idb.NewDelete().Model((*T)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return fmt.Errorf("delete all %s: %w", r.meta.name, err)
	}
	return nil
}
