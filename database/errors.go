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

package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
)

func (e SQLError) String() string {
	switch e {
	case NoRowsErr:
		return "no_rows"
	case NoColumnErr:
		return "no_column"
	case NoTableErr:
		return "no_table"
	case ExistTableErr:
		return "table_exists"
	case DuplicateKeyErr:
		return "duplicate_key"
	case NotNullViolationErr:
		return "not_null_violation"
	case ForeignKeyViolationErr:
		return "foreign_key_violation"
	case CheckConstraintViolationErr:
		return "check_violation"
	case DataTruncatedErr:
		return "data_truncated"
	default:
		return "unknown"
	}
}

var mysqlErrorNumbers = map[uint16]SQLError{
	1054: NoColumnErr,
	1146: NoTableErr,
	1050: ExistTableErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1451: ForeignKeyViolationErr,
	1452: ForeignKeyViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
	1406: DataTruncatedErr,
}

// Message fragments reported by lib/pq (SQLSTATE) and sqlite drivers.
var sqlErrorMessages = []struct {
	kind      SQLError
	fragments []string
}{
	{DuplicateKeyErr, []string{"duplicate key value", "unique constraint failed", "sqlstate 23505", "pq: duplicate key"}},
	{NotNullViolationErr, []string{"not-null constraint", "not null constraint failed", "sqlstate 23502"}},
	{ForeignKeyViolationErr, []string{"violates foreign key constraint", "foreign key constraint failed", "sqlstate 23503"}},
	{CheckConstraintViolationErr, []string{"violates check constraint", "check constraint failed", "sqlstate 23514"}},
	{DataTruncatedErr, []string{"value too long", "string data right truncation", "sqlstate 22001"}},
	{NoColumnErr, []string{"no such column", "sqlstate 42703"}},
	{NoTableErr, []string{"no such table", "sqlstate 42p01"}},
	{ExistTableErr, []string{"sqlstate 42p07"}},
}

// IsSqlError classifies a driver error. The first return value reports whether
// err originates from the database at all.
func IsSqlError(err error) (bool, SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, ok := mysqlErrorNumbers[mysqlErr.Number]; ok {
			return true, kind
		}
		return true, UnknownErr
	}
	s := strings.ToLower(err.Error())
	for _, m := range sqlErrorMessages {
		for _, f := range m.fragments {
			if strings.Contains(s, f) {
				return true, m.kind
			}
		}
	}
	if strings.Contains(s, "already exists") && (strings.Contains(s, "table") || strings.Contains(s, "relation")) {
		return true, ExistTableErr
	}
	return false, UnknownErr
}

func IsDuplicateKey(err error) bool {
	_, kind := IsSqlError(err)
	return kind == DuplicateKeyErr
}

func IsForeignKeyViolation(err error) bool {
	_, kind := IsSqlError(err)
	return kind == ForeignKeyViolationErr
}
