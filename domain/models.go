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
	"context"

	"github.com/tomoncle/workforce/database"
	"github.com/uptrace/bun"
)

func init() {
	database.RegisterModel((*Region)(nil), 10)
	database.RegisterModel((*Country)(nil), 20)
	database.RegisterModel((*Location)(nil), 30)
	database.RegisterModel((*Department)(nil), 40)
	database.RegisterModel((*Task)(nil), 50)
	database.RegisterModel((*Employee)(nil), 60)
	// bun resolves m2m:job_tasks while registering Job, so the join model goes first.
	database.RegisterModel((*JobTask)(nil), 65)
	database.RegisterModel((*Job)(nil), 70)
	database.RegisterModel((*JobHistory)(nil), 90)

	for _, fk := range references {
		database.RegisterForeignKey(fk)
	}

	database.RegisterMigration(database.MigrationItem{
		Version:     "002",
		Name:        "index_reference_columns",
		Description: "Index job_tasks.task_id and the job history references",
		Up:          createReferenceIndexes,
	})
}

func setNull(table, column, refTable string) database.ForeignKeyConstraint {
	return database.ForeignKeyConstraint{
		Table: table, Column: column,
		ReferenceTable: refTable, ReferenceColumn: "id",
		OnDelete: "SET NULL",
	}
}

func cascade(table, column, refTable string) database.ForeignKeyConstraint {
	return database.ForeignKeyConstraint{
		Table: table, Column: column,
		ReferenceTable: refTable, ReferenceColumn: "id",
		OnDelete: "CASCADE",
	}
}

var references = []database.ForeignKeyConstraint{
	setNull("countries", "region_id", "regions"),
	setNull("locations", "country_id", "countries"),
	setNull("departments", "location_id", "locations"),
	setNull("employees", "department_id", "departments"),
	setNull("employees", "manager_id", "employees"),
	setNull("jobs", "employee_id", "employees"),
	cascade("job_tasks", "job_id", "jobs"),
	cascade("job_tasks", "task_id", "tasks"),
	setNull("job_histories", "job_id", "jobs"),
	setNull("job_histories", "department_id", "departments"),
	setNull("job_histories", "employee_id", "employees"),
}

func createReferenceIndexes(ctx context.Context, db bun.IDB) error {
	indexes := []struct {
		model  interface{}
		name   string
		column string
	}{
		{(*JobTask)(nil), "idx_job_tasks_task_id", "task_id"},
		{(*JobHistory)(nil), "idx_job_histories_employee_id", "employee_id"},
		{(*Employee)(nil), "idx_employees_department_id", "department_id"},
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.column).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
