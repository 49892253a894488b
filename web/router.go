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
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tomoncle/workforce"
)

// RouterConfig holds the dependencies of the HTTP API.
type RouterConfig struct {
	Services *workforce.Services
	Health   HealthFunc
	// Metrics serves /management/prometheus; nil disables the endpoint.
	Metrics http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(Stack(WithRequestID(), WithLogging(), WithMetrics(), WithRecovery()))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, nil)
	})

	r.Route("/api", func(r chi.Router) {
		s := cfg.Services
		NewResource("regions", "region", s.Regions).Register(r)
		NewResource("countries", "country", s.Countries).Register(r)
		NewResource("locations", "location", s.Locations).Register(r)
		NewResource("departments", "department", s.Departments).Register(r)
		NewResource("tasks", "task", s.Tasks).Register(r)
		NewResource("employees", "employee", s.Employees).Paginated().Register(r)
		NewJobResource(s.Jobs).Register(r)
		NewResource("job-histories", "jobHistory", s.JobHistories).Paginated().Register(r)
	})

	r.Route("/management", func(r chi.Router) {
		r.Get("/health", healthHandler(cfg.Health))
		if cfg.Metrics != nil {
			r.Method(http.MethodGet, "/prometheus", cfg.Metrics)
		}
	})
	return r
}
