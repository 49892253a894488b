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

package web_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/workforce"
	"github.com/tomoncle/workforce/database"
	"github.com/tomoncle/workforce/database/dbtest"
	"github.com/tomoncle/workforce/domain"
	"github.com/tomoncle/workforce/web"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *apiClient {
	manager := dbtest.NewManager(t)
	h := web.NewRouter(web.RouterConfig{
		Services: workforce.NewServices(manager.GetDB()),
		Health:   manager.HealthCheck,
	})
	return &apiClient{t: t, handler: h}
}

func (c *apiClient) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (c *apiClient) count(path string) int {
	c.t.Helper()
	rec := c.do(http.MethodGet, path, "")
	require.Equal(c.t, http.StatusOK, rec.Code)
	return len(decode[[]json.RawMessage](c.t, rec))
}

func TestCreateCountry(t *testing.T) {
	api := newAPI(t)
	before := api.count("/api/countries")

	rec := api.do(http.MethodPost, "/api/countries", `{"countryName":"AAAAAAAAAA"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Country](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "AAAAAAAAAA", created.CountryName)
	assert.Equal(t, "/api/countries/"+created.ID, rec.Header().Get("Location"))
	assert.Equal(t, "workforceApp.country.created", rec.Header().Get(web.HeaderAlert))
	assert.Equal(t, created.ID, rec.Header().Get(web.HeaderParams))
	assert.NotEmpty(t, rec.Header().Get(web.HeaderRequestID))

	assert.Equal(t, before+1, api.count("/api/countries"))
}

func TestCreateWithExistingIDIsRejected(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/regions", `{"id":"region-1","regionName":"EMEA"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error.idexists", rec.Header().Get(web.HeaderError))
	assert.Equal(t, "region", rec.Header().Get(web.HeaderParams))
	problem := decode[web.Problem](t, rec)
	assert.Equal(t, "idexists", problem.ErrorKey)

	assert.Equal(t, 0, api.count("/api/regions"))
}

func TestGetUnknownEntity(t *testing.T) {
	api := newAPI(t)
	for _, path := range []string{"regions", "countries", "locations", "departments", "tasks", "employees", "jobs", "job-histories"} {
		rec := api.do(http.MethodGet, "/api/"+path+"/does-not-exist", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestUpdateLocation(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/locations", `{"streetAddress":"1 Main St","city":"Lyon"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	loc := decode[domain.Location](t, rec)

	rec = api.do(http.MethodPut, "/api/locations", `{"city":"Paris"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error.idnull", rec.Header().Get(web.HeaderError))

	rec = api.do(http.MethodPut, "/api/locations", `{"id":"missing","city":"Paris"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := fmt.Sprintf(`{"id":%q,"streetAddress":"2 Rue Neuve","city":"Paris"}`, loc.ID)
	rec = api.do(http.MethodPut, "/api/locations", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "workforceApp.location.updated", rec.Header().Get(web.HeaderAlert))

	rec = api.do(http.MethodGet, "/api/locations/"+loc.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Location](t, rec)
	assert.Equal(t, "Paris", updated.City)
	assert.Equal(t, "2 Rue Neuve", updated.StreetAddress)
	assert.Equal(t, 1, api.count("/api/locations"))
}

func TestDeleteTask(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/tasks", `{"title":"Onboarding"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[domain.Task](t, rec)

	rec = api.do(http.MethodDelete, "/api/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "workforceApp.task.deleted", rec.Header().Get(web.HeaderAlert))
	assert.Equal(t, 0, api.count("/api/tasks"))

	rec = api.do(http.MethodDelete, "/api/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, api.count("/api/tasks"))
}

func TestListSorting(t *testing.T) {
	api := newAPI(t)
	for _, name := range []string{"Beta", "Alpha", "Gamma"} {
		rec := api.do(http.MethodPost, "/api/regions", fmt.Sprintf(`{"regionName":%q}`, name))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := api.do(http.MethodGet, "/api/regions?sort=regionName,desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	regions := decode[[]domain.Region](t, rec)
	require.Len(t, regions, 3)
	assert.Equal(t, "Gamma", regions[0].RegionName)
	assert.Equal(t, "Alpha", regions[2].RegionName)

	rec = api.do(http.MethodGet, "/api/regions?sort=nope,asc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/regions?sort=regionName,sideways", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmployeePagination(t *testing.T) {
	api := newAPI(t)
	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"firstName":"E%d","email":"e%d@example.com"}`, i, i)
		rec := api.do(http.MethodPost, "/api/employees", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := api.do(http.MethodGet, "/api/employees?page=0&size=2&sort=firstName,asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get(web.HeaderTotalCount))
	link := rec.Header().Get("Link")
	assert.Contains(t, link, `rel="next"`)
	assert.Contains(t, link, `rel="last"`)
	assert.Contains(t, link, `rel="first"`)
	assert.NotContains(t, link, `rel="prev"`)
	assert.Contains(t, link, "sort=firstName%2Casc")
	first := decode[[]domain.Employee](t, rec)
	require.Len(t, first, 2)
	assert.Equal(t, "E0", first[0].FirstName)

	rec = api.do(http.MethodGet, "/api/employees?page=1&size=2&sort=firstName,asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Link"), `rel="prev"`)
	assert.NotContains(t, rec.Header().Get("Link"), `rel="next"`)
	second := decode[[]domain.Employee](t, rec)
	require.Len(t, second, 1)
	assert.Equal(t, "E2", second[0].FirstName)

	rec = api.do(http.MethodGet, "/api/employees?page=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/employees?page=9223372036854775807&size=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Employee](t, rec))
	link = rec.Header().Get("Link")
	assert.NotContains(t, link, `rel="next"`)
	assert.NotContains(t, link, "page=-")
}

func TestJobsEagerLoad(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/tasks", `{"title":"Hiring"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[domain.Task](t, rec)

	rec = api.do(http.MethodPost, "/api/jobs", fmt.Sprintf(`{"jobTitle":"Manager","tasks":[{"id":%q}]}`, task.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	job := decode[domain.Job](t, rec)

	rec = api.do(http.MethodGet, "/api/jobs?eagerload=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(web.HeaderTotalCount))
	eager := decode[[]domain.Job](t, rec)
	require.Len(t, eager, 1)
	require.Len(t, eager[0].Tasks, 1)
	assert.Equal(t, "Hiring", eager[0].Tasks[0].Title)

	rec = api.do(http.MethodGet, "/api/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lazy := decode[[]domain.Job](t, rec)
	require.Len(t, lazy, 1)
	assert.Empty(t, lazy[0].Tasks)

	rec = api.do(http.MethodGet, "/api/jobs/"+job.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	one := decode[domain.Job](t, rec)
	require.Len(t, one.Tasks, 1)
	assert.Equal(t, task.ID, one.Tasks[0].ID)
}

func TestJobWithUnknownTaskIsRejected(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/jobs", `{"jobTitle":"Manager","tasks":[{"id":"ghost"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decode[web.Problem](t, rec)
	require.Len(t, problem.FieldErrors, 1)
	assert.Equal(t, "tasks", problem.FieldErrors[0].Field)
	assert.Equal(t, 0, api.count("/api/jobs"))
}

func TestValidationAndMalformedBodies(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/departments", `{"departmentName":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error.validation", rec.Header().Get(web.HeaderError))
	problem := decode[web.Problem](t, rec)
	require.Len(t, problem.FieldErrors, 1)
	assert.Equal(t, "departmentName", problem.FieldErrors[0].Field)

	rec = api.do(http.MethodPost, "/api/job-histories", `{"language":"KLINGON"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/employees", `{"email":"not-an-address"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/regions", `{"regionName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, api.count("/api/regions"))

	rec = api.do(http.MethodPost, "/api/countries", "null")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPut, "/api/countries", " null ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, api.count("/api/countries"))
}

func TestJobHistoryRoundTrip(t *testing.T) {
	api := newAPI(t)

	body := `{"startDate":"2024-01-01T00:00:00Z","endDate":"2024-06-30T00:00:00Z","language":"french"}`
	rec := api.do(http.MethodPost, "/api/job-histories", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.JobHistory](t, rec)
	require.NotNil(t, created.Language)
	assert.Equal(t, domain.French, *created.Language)
	assert.Equal(t, "workforceApp.jobHistory.created", rec.Header().Get(web.HeaderAlert))

	rec = api.do(http.MethodGet, "/api/job-histories/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[domain.JobHistory](t, rec)
	require.NotNil(t, found.EndDate)
	assert.Equal(t, 2024, found.EndDate.Year())
}

func TestUnknownRoute(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodPatch, "/api/regions", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/management/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"UP"`)

	down := web.NewRouter(web.RouterConfig{
		Services: workforce.NewServices(dbtest.New(t)),
		Health: func(context.Context) *database.HealthStatus {
			return &database.HealthStatus{Healthy: false, LastError: "connection refused"}
		},
	})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/management/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestPrometheusEndpoint(t *testing.T) {
	manager := dbtest.NewManager(t)
	metrics, err := web.RegisterMetrics(web.MetricsConfig{Registry: prometheus.NewRegistry(), DB: manager.GetSQLDB()})
	require.NoError(t, err)
	h := web.NewRouter(web.RouterConfig{
		Services: workforce.NewServices(manager.GetDB()),
		Metrics:  metrics,
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/regions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/management/prometheus", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `workforce_http_requests_total{method="GET",route="/api/regions`)
	assert.Contains(t, rec.Body.String(), `go_sql_max_open_connections{db_name="workforce"}`)
}
