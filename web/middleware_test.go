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
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/workforce/types"
	"github.com/tomoncle/workforce/utils"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)

	order = nil
	h = Stack(mark("a"), mark("b"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestWithRequestIDPropagates(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}), WithRequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestWithRecoveryAndLogging(t *testing.T) {
	var buf bytes.Buffer
	utils.SetLogOutput(&buf)
	defer utils.SetLogOutput(os.Stdout)

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), WithRequestID(), WithLogging(), WithRecovery())

	req := httptest.NewRequest(http.MethodGet, "/api/regions?sort=id,desc", nil)
	req.RemoteAddr = "10.0.0.7:4242"
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rec, req) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error.http.500")
	assert.NotContains(t, rec.Body.String(), "boom")

	out := buf.String()
	assert.Contains(t, out, "panic serving GET /api/regions: boom")
	assert.Contains(t, out, "status_code=500")
	assert.Contains(t, out, "req_uri=/api/regions?sort=id,desc")
	assert.Contains(t, out, "client_ip=10.0.0.7")
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestPaginationLinks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/jobs?page=1&size=5&eagerload=true", nil)
	p, err := parsePageable(req)
	require.NoError(t, err)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, 5, p.GetSize())

	page := types.NewPage[struct{}](p)
	page.Total = 12
	rec := httptest.NewRecorder()
	writePaginationHeaders(rec, req, page)

	assert.Equal(t, "12", rec.Header().Get(HeaderTotalCount))
	link := rec.Header().Get("Link")
	assert.Contains(t, link, `</api/jobs?eagerload=true&page=2&size=5>; rel="next"`)
	assert.Contains(t, link, `</api/jobs?eagerload=true&page=0&size=5>; rel="prev"`)
	assert.Contains(t, link, `</api/jobs?eagerload=true&page=2&size=5>; rel="last"`)
	assert.Contains(t, link, `</api/jobs?eagerload=true&page=0&size=5>; rel="first"`)
}
