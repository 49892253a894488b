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
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"gopkg.in/yaml.v3"
)

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete"` // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string `yaml:"on_update"`
	ConstraintName  string `yaml:"constraint_name"`
}

// ForeignKeyConfig is the YAML document listing constraints.
type ForeignKeyConfig struct {
	ForeignKeys []ForeignKeyConstraint `yaml:"foreign_keys"`
}

func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// GenerateSQL returns the ALTER TABLE statement adding the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		fk.Table, fk.GenerateConstraintName(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE " + strings.ToUpper(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE " + strings.ToUpper(fk.OnUpdate))
	}
	return b.String()
}

var (
	codeConstraintsMu sync.RWMutex
	codeConstraints   []ForeignKeyConstraint
)

// RegisterForeignKey declares a constraint alongside the models that need it.
func RegisterForeignKey(fk ForeignKeyConstraint) {
	codeConstraintsMu.Lock()
	defer codeConstraintsMu.Unlock()
	codeConstraints = append(codeConstraints, fk)
}

func registeredForeignKeys() []ForeignKeyConstraint {
	codeConstraintsMu.RLock()
	defer codeConstraintsMu.RUnlock()
	out := make([]ForeignKeyConstraint, len(codeConstraints))
	copy(out, codeConstraints)
	return out
}

// ForeignKeyManager adds and validates foreign key constraints.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager uses the constraints registered in code.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	return &ForeignKeyManager{constraints: registeredForeignKeys(), logger: logger}
}

// LoadForeignKeyManager reads constraints from a YAML file, falling back to
// the code-registered constraints when the file is absent.
func LoadForeignKeyManager(logger Logger, path string) (*ForeignKeyManager, error) {
	if path == "" {
		return NewForeignKeyManager(logger), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if logger != nil {
			logger.Debug("Foreign key file not found, using code-defined constraints", "path", path)
		}
		return NewForeignKeyManager(logger), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read foreign key file: %w", err)
	}
	var cfg ForeignKeyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse foreign key file: %w", err)
	}
	return &ForeignKeyManager{constraints: cfg.ForeignKeys, logger: logger}, nil
}

// AddAllForeignKeys adds every constraint. Failures are logged and skipped so an
// already present constraint does not abort the migration. SQLite cannot add
// constraints to existing tables, so nothing is done there.
func (fkm *ForeignKeyManager) AddAllForeignKeys(ctx context.Context, db bun.IDB) error {
	if db.Dialect().Name() == dialect.SQLite {
		if fkm.logger != nil {
			fkm.logger.Debug("Skipping foreign keys on sqlite", "constraints", len(fkm.constraints))
		}
		return nil
	}
	for _, c := range fkm.constraints {
		if _, err := db.ExecContext(ctx, c.GenerateSQL()); err != nil {
			if fkm.logger != nil {
				fkm.logger.Debug("Failed to add foreign key constraint", "constraint", c.GenerateConstraintName(), "error", err.Error())
			}
			continue
		}
		if fkm.logger != nil {
			fkm.logger.Debug("Added foreign key constraint", "constraint", c.GenerateConstraintName())
		}
	}
	return nil
}

func (fkm *ForeignKeyManager) GetConstraintsByTable(tableName string) []ForeignKeyConstraint {
	var result []ForeignKeyConstraint
	for _, c := range fkm.constraints {
		if strings.EqualFold(c.Table, tableName) {
			result = append(result, c)
		}
	}
	return result
}

func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

var validFKActions = map[string]bool{"CASCADE": true, "RESTRICT": true, "SET NULL": true, "NO ACTION": true}

// ValidateConstraints reports missing names and unknown referential actions.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error
	for _, c := range fkm.constraints {
		if c.Table == "" || c.Column == "" || c.ReferenceTable == "" || c.ReferenceColumn == "" {
			errs = append(errs, fmt.Errorf("incomplete foreign key %s.%s -> %s.%s", c.Table, c.Column, c.ReferenceTable, c.ReferenceColumn))
			continue
		}
		for _, action := range []string{c.OnDelete, c.OnUpdate} {
			if action != "" && !validFKActions[strings.ToUpper(action)] {
				errs = append(errs, fmt.Errorf("invalid referential action %q on %s", action, c.GenerateConstraintName()))
			}
		}
	}
	return errs
}
