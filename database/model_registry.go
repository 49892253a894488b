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
	"reflect"
	"sort"
	"sync"
)

// SQLModel is a bun model that migrations create a table for.
// Lower priorities are created first; join tables come after the tables they join.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

type tableModel struct {
	instance interface{}
	priority int
	seq      int
}

func (m *tableModel) Instance() interface{} { return m.instance }

func (m *tableModel) Priority() int { return m.priority }

// modelRegistry keys models by Go type, so registering a type twice keeps a
// single table and the latest priority.
type modelRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*tableModel
	seq    int
}

var models = &modelRegistry{byType: make(map[reflect.Type]*tableModel)}

func (r *modelRegistry) register(instance interface{}, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	typ := reflect.TypeOf(instance)
	if m, ok := r.byType[typ]; ok {
		m.priority = priority
		return
	}
	r.seq++
	r.byType[typ] = &tableModel{instance: instance, priority: priority, seq: r.seq}
}

// sorted orders by priority, then by registration order.
func (r *modelRegistry) sorted() []SQLModel {
	r.mu.RLock()
	list := make([]*tableModel, 0, len(r.byType))
	for _, m := range r.byType {
		list = append(list, &tableModel{instance: m.instance, priority: m.priority, seq: m.seq})
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	out := make([]SQLModel, len(list))
	for i, m := range list {
		out[i] = m
	}
	return out
}

// RegisterModel declares a table model, usually a nil struct pointer such as
// (*domain.Region)(nil), from an init function of the package defining it.
func RegisterModel(instance interface{}, priority int) {
	models.register(instance, priority)
}

// GetRegisteredModels returns every registered model in creation order.
func GetRegisteredModels() []SQLModel {
	return models.sorted()
}

func RegisteredModelInstances() []interface{} {
	sorted := GetRegisteredModels()
	instances := make([]interface{}, len(sorted))
	for i, m := range sorted {
		instances[i] = m.Instance()
	}
	return instances
}
