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

// Job owns a many-to-many association to Task through job_tasks.
// Tasks is only populated by the eager queries and, on save, its identifiers
// replace the stored association.
type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID         string  `bun:"id,pk,type:varchar(64)" json:"id,omitempty"`
	JobTitle   string  `bun:"job_title" json:"jobTitle"`
	MinSalary  *int64  `bun:"min_salary" json:"minSalary,omitempty"`
	MaxSalary  *int64  `bun:"max_salary" json:"maxSalary,omitempty"`
	EmployeeID *string `bun:"employee_id,type:varchar(64)" json:"employeeId,omitempty"`
	Tasks      []*Task `bun:"m2m:job_tasks,join:Job=Task" json:"tasks,omitempty"`
}

func (j *Job) GetID() string   { return j.ID }
func (j *Job) SetID(id string) { j.ID = id }

// TaskIDs returns the non-empty task identifiers, deduplicated in order.
func (j *Job) TaskIDs() []string {
	seen := make(map[string]struct{}, len(j.Tasks))
	ids := make([]string, 0, len(j.Tasks))
	for _, t := range j.Tasks {
		if t == nil || t.ID == "" {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		ids = append(ids, t.ID)
	}
	return ids
}

// JobTask is the join row between Job and Task.
type JobTask struct {
	bun.BaseModel `bun:"table:job_tasks,alias:jt"`

	JobID  string `bun:"job_id,pk,type:varchar(64)"`
	Job    *Job   `bun:"rel:belongs-to,join:job_id=id"`
	TaskID string `bun:"task_id,pk,type:varchar(64)"`
	Task   *Task  `bun:"rel:belongs-to,join:task_id=id"`
}
