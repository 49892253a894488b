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

package domain

import (
	"time"

	"github.com/uptrace/bun"
)

type JobHistory struct {
	bun.BaseModel `bun:"table:job_histories,alias:jh"`

	ID           string     `bun:"id,pk,type:varchar(64)" json:"id,omitempty"`
	StartDate    *time.Time `bun:"start_date" json:"startDate,omitempty"`
	EndDate      *time.Time `bun:"end_date" json:"endDate,omitempty"`
	Language     *Language  `bun:"language,type:varchar(16)" json:"language,omitempty"`
	JobID        *string    `bun:"job_id,type:varchar(64)" json:"jobId,omitempty"`
	DepartmentID *string    `bun:"department_id,type:varchar(64)" json:"departmentId,omitempty"`
	EmployeeID   *string    `bun:"employee_id,type:varchar(64)" json:"employeeId,omitempty"`
}

func (h *JobHistory) GetID() string   { return h.ID }
func (h *JobHistory) SetID(id string) { h.ID = id }

func (h *JobHistory) Validate() error {
	if h.Language != nil && !h.Language.IsValid() {
		return invalid("language", "unknown language %q", string(*h.Language))
	}
	if h.StartDate != nil && h.EndDate != nil && h.EndDate.Before(*h.StartDate) {
		return invalid("endDate", "must not precede startDate")
	}
	return nil
}
