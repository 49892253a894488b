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

type Location struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID            string  `bun:"id,pk,type:varchar(64)" json:"id,omitempty"`
	StreetAddress string  `bun:"street_address" json:"streetAddress"`
	PostalCode    string  `bun:"postal_code" json:"postalCode"`
	City          string  `bun:"city" json:"city"`
	StateProvince string  `bun:"state_province" json:"stateProvince"`
	CountryID     *string `bun:"country_id,type:varchar(64)" json:"countryId,omitempty"`
}

func (l *Location) GetID() string   { return l.ID }
func (l *Location) SetID(id string) { l.ID = id }
