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
	"net/http"
	"strconv"

	"github.com/tomoncle/workforce"
	"github.com/tomoncle/workforce/domain"
	"github.com/tomoncle/workforce/types"
)

// NewJobResource serves jobs; GET /api/jobs?eagerload=true resolves tasks
// for every job on the page.
func NewJobResource(service workforce.JobService) *Resource[domain.Job] {
	res := NewResource[domain.Job]("jobs", "job", service)
	return res.PaginatedWith(func(ctx context.Context, r *http.Request, page *types.Pageable) (*types.Page[domain.Job], error) {
		if eager, _ := strconv.ParseBool(r.URL.Query().Get("eagerload")); eager {
			return service.FindAllWithEagerRelationships(ctx, page)
		}
		return service.FindPage(ctx, page)
	})
}
