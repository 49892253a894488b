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

	"github.com/uptrace/bun"
)

type Department struct {
	bun.BaseModel `bun:"table:departments,alias:d"`

	ID             string  `bun:"id,pk,type:varchar(64)" json:"id,omitempty"`
	DepartmentName string  `bun:"department_name,notnull" json:"departmentName"`
	LocationID     *string `bun:"location_id,type:varchar(64)" json:"locationId,omitempty"`
}

func (d *Department) GetID() string   { return d.ID }
func (d *Department) SetID(id string) { d.ID = id }

func (d *Department) Validate() error {
	if strings.TrimSpace(d.DepartmentName) == "" {
		return invalid("departmentName", "must not be blank")
	}
	return nil
}
