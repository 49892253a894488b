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
	"reflect"
	"strings"
	"sync"

	"github.com/tomoncle/workforce/utils"
)

// entityMeta maps JSON property names to column names for one model type.
type entityMeta struct {
	name        string
	columns     map[string]string // json property -> column
	dataColumns []string          // non-key columns, in declaration order
}

var metaCache sync.Map // reflect.Type -> *entityMeta

func metaOf(t reflect.Type) *entityMeta {
	if m, ok := metaCache.Load(t); ok {
		return m.(*entityMeta)
	}
	m := &entityMeta{name: t.Name(), columns: make(map[string]string)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		column, pk, ok := bunColumn(f.Tag.Get("bun"), f.Name)
		if !ok {
			continue
		}
		property, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if property == "" {
			property = f.Name
		}
		if property != "-" {
			m.columns[property] = column
		}
		if !pk {
			m.dataColumns = append(m.dataColumns, column)
		}
	}
	actual, _ := metaCache.LoadOrStore(t, m)
	return actual.(*entityMeta)
}

// bunColumn reads the column name from a bun tag; relation fields have none.
func bunColumn(tag, goName string) (column string, pk bool, ok bool) {
	if tag == "-" || strings.HasPrefix(tag, "rel:") || strings.HasPrefix(tag, "m2m:") {
		return "", false, false
	}
	parts := strings.Split(tag, ",")
	column = parts[0]
	if column == "" {
		column = utils.CamelToSnake(goName)
	}
	for _, p := range parts[1:] {
		if p == "pk" {
			pk = true
		}
	}
	return column, pk, true
}

func (m *entityMeta) column(property string) (string, bool) {
	c, ok := m.columns[property]
	return c, ok
}
