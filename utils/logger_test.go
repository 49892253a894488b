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

package utils

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" warning "))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("verbose"))
}

func TestRegistryLevels(t *testing.T) {
	l := NewLogger("REGISTRY_T")
	assert.Same(t, l, GetLogger("REGISTRY_T"))

	assert.True(t, SetLoggerLevel("REGISTRY_T", "error"))
	assert.Equal(t, logrus.ErrorLevel, l.GetLevel())
	assert.False(t, SetLoggerLevel("NOPE", "error"))

	ConfigureLogLevel("trace")
	defer ConfigureLogLevel("debug")
	assert.Equal(t, logrus.TraceLevel, l.GetLevel())
}

func TestJSONLogFormatterLiftsHTTPFields(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "WEB", TimestampFormat: logTimeFormat}
	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "request",
		Data: logrus.Fields{
			"req_method":  "GET",
			"req_uri":     "/api/regions",
			"status_code": 200,
			"error":       errors.New("boom"),
			"custom":      "x",
		},
	}
	b, err := f.Format(entry)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &rec))
	assert.Equal(t, "WEB", rec["logger"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "/api/regions", rec["path"])
	assert.EqualValues(t, 200, rec["status_code"])
	fields := rec["fields"].(map[string]interface{})
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "x", fields["custom"])
}

func TestLog4jColorFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "SERVICE", TimestampFormat: logTimeFormat, NameWidth: 10}
	b, err := f.Format(&logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.DebugLevel,
		Message: "Request to save Region",
		Data:    logrus.Fields{"b": 2, "a": 1},
	})
	require.NoError(t, err)
	line := string(b)
	assert.Contains(t, line, "SERVICE")
	assert.Contains(t, line, "Request to save Region a=1 b=2")
}

func TestCamelToSnake(t *testing.T) {
	assert.Equal(t, "job_title", CamelToSnake("jobTitle"))
	assert.Equal(t, "id", CamelToSnake("id"))
	assert.Equal(t, "commission_pct", CamelToSnake("commissionPct"))
}
