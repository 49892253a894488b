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

import "github.com/uptrace/bun"

type Country struct {
	bun.BaseModel `bun:"table:countries,alias:c"`

	ID          string  `bun:"id,pk,type:varchar(64)" json:"id,omitempty"`
	CountryName string  `bun:"country_name" json:"countryName"`
	RegionID    *string `bun:"region_id,type:varchar(64)" json:"regionId,omitempty"`
}

func (c *Country) GetID() string   { return c.ID }
func (c *Country) SetID(id string) { c.ID = id }
