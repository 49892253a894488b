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

package types

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000
)

// Direction is the ordering direction of a sort property.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts "asc"/"desc" in any case; anything else is rejected.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

// Order sorts by a JSON property name, e.g. {"countryName", Desc}.
type Order struct {
	Property  string
	Direction Direction
}

func (o Order) String() string {
	return fmt.Sprintf("%s,%s", o.Property, strings.ToLower(string(o.Direction)))
}

// ParseOrder parses the "property,direction" form used by the sort query parameter.
func ParseOrder(s string) (Order, error) {
	prop, dir, _ := strings.Cut(s, ",")
	prop = strings.TrimSpace(prop)
	if prop == "" {
		return Order{}, fmt.Errorf("invalid sort %q", s)
	}
	d, err := ParseDirection(dir)
	if err != nil {
		return Order{}, err
	}
	return Order{Property: prop, Direction: d}, nil
}

// Pageable describes a zero-based page request with optional ordering.
type Pageable struct {
	page   int
	size   int
	orders []Order
}

// NewPageable clamps page and size into their valid ranges.
func NewPageable(page, size int, orders ...Order) *Pageable {
	p := &Pageable{page: page, size: size, orders: orders}
	if p.page < 0 {
		p.page = 0
	}
	if p.size < 1 {
		p.size = DefaultPageSize
	}
	if p.size > MaxPageSize {
		p.size = MaxPageSize
	}
	// keeps page*size and page+1 inside int
	if maxPage := math.MaxInt/p.size - 1; p.page > maxPage {
		p.page = maxPage
	}
	return p
}

func (p *Pageable) GetPage() int { return p.page }

func (p *Pageable) GetSize() int { return p.size }

func (p *Pageable) GetOffset() int { return p.page * p.size }

func (p *Pageable) GetOrders() []Order { return p.orders }

// Page holds one slice of a collection together with the collection total.
type Page[T any] struct {
	Content []*T
	Page    int
	Size    int
	Total   int
}

// NewPage constructs an empty page for the request.
func NewPage[T any](p *Pageable) *Page[T] {
	return &Page[T]{Content: make([]*T, 0), Page: p.GetPage(), Size: p.GetSize()}
}

// TotalPages is at least one, so "last" links always point at a valid page.
func (p *Page[T]) TotalPages() int {
	if p.Size < 1 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.Size - 1) / p.Size
}

func (p *Page[T]) HasNext() bool { return p.Page+1 < p.TotalPages() }

func (p *Page[T]) HasPrevious() bool { return p.Page > 0 }
