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
	"fmt"
	"strings"

	"github.com/tomoncle/workforce/types"
)

// Language is the working language recorded on a job history entry.
type Language string

const (
	French  Language = "FRENCH"
	English Language = "ENGLISH"
	Spanish Language = "SPANISH"
)

var languages = []Language{French, English, Spanish}

var _ types.BaseEnum = French

func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToUpper(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", invalid("language", "unknown language %q", s)
	}
	return l, nil
}

func (l Language) IsValid() bool {
	return l.Number() != types.IllegalValue
}

func (l Language) Number() int {
	for i, v := range languages {
		if v == l {
			return i
		}
	}
	return types.IllegalValue
}

func (l Language) String() string { return string(l) }

func (l Language) Name() string {
	if !l.IsValid() {
		return types.IllegalName
	}
	return string(l)
}

func (l Language) Desc() string {
	switch l {
	case French:
		return "French"
	case English:
		return "English"
	case Spanish:
		return "Spanish"
	default:
		return types.IllegalDesc
	}
}

// UnmarshalJSON accepts any letter case and rejects unknown values.
func (l *Language) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("language must be a string: %w", err)
	}
	parsed, err := ParseLanguage(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
