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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartmentRequiresName(t *testing.T) {
	err := (&Department{DepartmentName: "  "}).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "departmentName", fe.Field)

	assert.NoError(t, (&Department{DepartmentName: "AAAAAAAAAA"}).Validate())
}

func TestEmployeeEmail(t *testing.T) {
	assert.NoError(t, (&Employee{}).Validate())
	assert.NoError(t, (&Employee{Email: "a@b.c"}).Validate())
	assert.ErrorIs(t, (&Employee{Email: "nobody"}).Validate(), ErrValidation)
}

func TestJobHistoryDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	assert.ErrorIs(t, (&JobHistory{StartDate: &start, EndDate: &end}).Validate(), ErrValidation)

	end = start.Add(time.Hour)
	assert.NoError(t, (&JobHistory{StartDate: &start, EndDate: &end}).Validate())
}

func TestLanguageJSON(t *testing.T) {
	var h JobHistory
	require.NoError(t, json.Unmarshal([]byte(`{"language":"english"}`), &h))
	require.NotNil(t, h.Language)
	assert.Equal(t, English, *h.Language)
	assert.Equal(t, 1, h.Language.Number())
	assert.Equal(t, "English", h.Language.Desc())

	err := json.Unmarshal([]byte(`{"language":"KLINGON"}`), &h)
	assert.ErrorIs(t, err, ErrValidation)

	b, err := json.Marshal(&JobHistory{Language: &[]Language{Spanish}[0]})
	require.NoError(t, err)
	assert.JSONEq(t, `{"language":"SPANISH"}`, string(b))
}

func TestLanguageInvalid(t *testing.T) {
	l := Language("GERMAN")
	assert.False(t, l.IsValid())
	assert.Equal(t, "unknown", l.Name())
}

func TestJobTaskIDs(t *testing.T) {
	j := &Job{Tasks: []*Task{{ID: "a"}, nil, {ID: ""}, {ID: "b"}, {ID: "a"}}}
	assert.Equal(t, []string{"a", "b"}, j.TaskIDs())
}
