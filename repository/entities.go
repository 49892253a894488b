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

package repository

import (
	"github.com/tomoncle/workforce/domain"
	"github.com/uptrace/bun"
)

type (
	RegionRepository     = Repository[domain.Region]
	CountryRepository    = Repository[domain.Country]
	LocationRepository   = Repository[domain.Location]
	DepartmentRepository = Repository[domain.Department]
	EmployeeRepository   = Repository[domain.Employee]
	JobHistoryRepository = Repository[domain.JobHistory]
)

func NewRegionRepository(db *bun.DB) RegionRepository {
	return NewRepository[domain.Region](db)
}

func NewCountryRepository(db *bun.DB) CountryRepository {
	return NewRepository[domain.Country](db)
}

func NewLocationRepository(db *bun.DB) LocationRepository {
	return NewRepository[domain.Location](db)
}

func NewDepartmentRepository(db *bun.DB) DepartmentRepository {
	return NewRepository[domain.Department](db)
}

func NewEmployeeRepository(db *bun.DB) EmployeeRepository {
	return NewRepository[domain.Employee](db)
}

func NewJobHistoryRepository(db *bun.DB) JobHistoryRepository {
	return NewRepository[domain.JobHistory](db)
}
