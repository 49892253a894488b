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

package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tomoncle/workforce"
	"github.com/tomoncle/workforce/domain"
	"github.com/tomoncle/workforce/types"
)

// PageFunc loads one page of a paginated resource.
type PageFunc[T any] func(ctx context.Context, r *http.Request, page *types.Pageable) (*types.Page[T], error)

// Resource serves the CRUD endpoints of one entity.
type Resource[T any] struct {
	path    string
	entity  string
	service workforce.Service[T]
	page    PageFunc[T]
}

// NewResource serves service under /api/<path>; entity names it in alert headers.
func NewResource[T any](path, entity string, service workforce.Service[T]) *Resource[T] {
	return &Resource[T]{path: path, entity: entity, service: service}
}

// Paginated makes the list endpoint page through the service.
func (res *Resource[T]) Paginated() *Resource[T] {
	return res.PaginatedWith(func(ctx context.Context, _ *http.Request, page *types.Pageable) (*types.Page[T], error) {
		return res.service.FindPage(ctx, page)
	})
}

// PaginatedWith pages through fn instead of the service default.
func (res *Resource[T]) PaginatedWith(fn PageFunc[T]) *Resource[T] {
	res.page = fn
	return res
}

func (res *Resource[T]) Register(r chi.Router) {
	r.Route("/"+res.path, func(r chi.Router) {
		r.Post("/", res.create)
		r.Put("/", res.update)
		r.Get("/", res.list)
		r.Get("/{id}", res.get)
		r.Delete("/{id}", res.delete)
	})
}

func identity[T any](e *T) types.Identifiable {
	return any(e).(types.Identifiable)
}

func (res *Resource[T]) decode(w http.ResponseWriter, r *http.Request) (*T, error) {
	entity := new(T)
	if err := ReadJSON(w, r, entity); err != nil {
		return nil, err
	}
	if v, ok := any(entity).(domain.Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return entity, nil
}

func (res *Resource[T]) create(w http.ResponseWriter, r *http.Request) {
	entity, err := res.decode(w, r)
	if err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	if identity(entity).GetID() != "" {
		WriteError(w, r, res.entity, badRequestAlert(
			fmt.Sprintf("A new %s cannot already have an ID", res.entity), res.entity, "idexists"))
		return
	}
	saved, err := res.service.Save(r.Context(), entity)
	if err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	id := identity(saved).GetID()
	w.Header().Set("Location", fmt.Sprintf("/api/%s/%s", res.path, id))
	createdAlert(w, res.entity, id)
	WriteJSON(w, http.StatusCreated, saved)
}

func (res *Resource[T]) update(w http.ResponseWriter, r *http.Request) {
	entity, err := res.decode(w, r)
	if err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	id := identity(entity).GetID()
	if id == "" {
		WriteError(w, r, res.entity, badRequestAlert("Invalid id", res.entity, "idnull"))
		return
	}
	exists, err := res.service.Exists(r.Context(), id)
	if err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	if !exists {
		writeProblem(w, r, http.StatusNotFound, nil)
		return
	}
	saved, err := res.service.Save(r.Context(), entity)
	if err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	updatedAlert(w, res.entity, id)
	WriteJSON(w, http.StatusOK, saved)
}

func (res *Resource[T]) list(w http.ResponseWriter, r *http.Request) {
	if res.page == nil {
		orders, err := parseSort(r)
		if err != nil {
			WriteError(w, r, res.entity, err)
			return
		}
		all, err := res.service.FindAll(r.Context(), orders...)
		if err != nil {
			WriteError(w, r, res.entity, err)
			return
		}
		WriteJSON(w, http.StatusOK, all)
		return
	}

	pageable, err := parsePageable(r)
	if err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	page, err := res.page(r.Context(), r, pageable)
	if err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	writePaginationHeaders(w, r, page)
	WriteJSON(w, http.StatusOK, page.Content)
}

func (res *Resource[T]) get(w http.ResponseWriter, r *http.Request) {
	entity, err := res.service.FindOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	WriteJSON(w, http.StatusOK, entity)
}

func (res *Resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := res.service.Delete(r.Context(), id); err != nil {
		WriteError(w, r, res.entity, err)
		return
	}
	deletedAlert(w, res.entity, id)
	w.WriteHeader(http.StatusNoContent)
}
