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
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Employee references its department and manager by identifier only.
type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:e"`

	ID            string     `bun:"id,pk,type:varchar(64)" json:"id,omitempty"`
	FirstName     string     `bun:"first_name" json:"firstName"`
	LastName      string     `bun:"last_name" json:"lastName"`
	Email         string     `bun:"email" json:"email"`
	PhoneNumber   string     `bun:"phone_number" json:"phoneNumber"`
	HireDate      *time.Time `bun:"hire_date" json:"hireDate,omitempty"`
	Salary        *int64     `bun:"salary" json:"salary,omitempty"`
	CommissionPct *int64     `bun:"commission_pct" json:"commissionPct,omitempty"`
	DepartmentID  *string    `bun:"department_id,type:varchar(64)" json:"departmentId,omitempty"`
	ManagerID     *string    `bun:"manager_id,type:varchar(64)" json:"managerId,omitempty"`
}

func (e *Employee) GetID() string   { return e.ID }
func (e *Employee) SetID(id string) { e.ID = id }

func (e *Employee) Validate() error {
	if e.Email != "" && !strings.Contains(e.Email, "@") {
		return invalid("email", "must contain @")
	}
	return nil
}
