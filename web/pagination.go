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
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomoncle/workforce/repository"
	"github.com/tomoncle/workforce/types"
)

const HeaderTotalCount = "X-Total-Count"

// parseSort reads every sort=prop,dir query parameter in order.
func parseSort(r *http.Request) ([]types.Order, error) {
	values := r.URL.Query()["sort"]
	orders := make([]types.Order, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		o, err := types.ParseOrder(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", repository.ErrInvalidSort, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// parsePageable reads page (zero based), size and sort.
func parsePageable(r *http.Request) (*types.Pageable, error) {
	q := r.URL.Query()
	page, err := queryInt(q, "page", 0)
	if err != nil {
		return nil, err
	}
	size, err := queryInt(q, "size", types.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	orders, err := parseSort(r)
	if err != nil {
		return nil, err
	}
	return types.NewPageable(page, size, orders...), nil
}

func queryInt(q url.Values, key string, def int) (int, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errMalformedBody, key)
	}
	return n, nil
}

// writePaginationHeaders sets X-Total-Count and an RFC 5988 Link header.
func writePaginationHeaders[T any](w http.ResponseWriter, r *http.Request, page *types.Page[T]) {
	w.Header().Set(HeaderTotalCount, strconv.Itoa(page.Total))

	last := page.TotalPages() - 1
	links := make([]string, 0, 4)
	if page.HasNext() {
		links = append(links, pageLink(r, page.Page+1, page.Size, "next"))
	}
	if page.HasPrevious() {
		links = append(links, pageLink(r, page.Page-1, page.Size, "prev"))
	}
	links = append(links, pageLink(r, last, page.Size, "last"))
	links = append(links, pageLink(r, 0, page.Size, "first"))
	w.Header().Set("Link", strings.Join(links, ","))
}

func pageLink(r *http.Request, page, size int, rel string) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	return fmt.Sprintf(`<%s>; rel="%s"`, u.String(), rel)
}
