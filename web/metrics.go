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
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workforce",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests served.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workforce",
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workforce",
		Name:      "http_inflight_requests",
		Help:      "Requests currently being served.",
	})
)

// MetricsConfig selects where metrics are registered. A nil Registry means the
// process-wide default registry; DB, when set, adds connection pool gauges.
type MetricsConfig struct {
	Registry *prometheus.Registry
	DB       *sql.DB
}

// RegisterMetrics registers the HTTP collectors and returns the scrape handler.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if cfg.Registry != nil {
		reg, gatherer = cfg.Registry, cfg.Registry
	}

	cs := []prometheus.Collector{httpRequestsTotal, httpRequestDuration, httpInflight}
	if cfg.DB != nil {
		cs = append(cs, collectors.NewDBStatsCollector(cfg.DB, "workforce"))
	}
	for _, c := range cs {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), nil
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// WithMetrics records count and latency per route pattern.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpInflight.Inc()
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				httpInflight.Dec()
				method := strings.ToUpper(r.Method)
				route := routePattern(r)
				httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
				httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(rec.statusCode())).Inc()
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// routePattern keeps label cardinality bounded by using the matched chi pattern.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
