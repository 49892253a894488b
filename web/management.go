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

	"github.com/tomoncle/workforce/database"
)

// HealthFunc reports database health, typically database.GetHealthStatus.
type HealthFunc func(ctx context.Context) *database.HealthStatus

type healthResponse struct {
	Status     string                            `json:"status"`
	Components map[string]*database.HealthStatus `json:"components,omitempty"`
}

func healthHandler(check HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "UP"}
		if check != nil {
			st := check(r.Context())
			resp.Components = map[string]*database.HealthStatus{"db": st}
			if st == nil || !st.Healthy {
				resp.Status = "DOWN"
			}
		}
		status := http.StatusOK
		if resp.Status != "UP" {
			status = http.StatusServiceUnavailable
		}
		WriteJSON(w, status, resp)
	}
}
