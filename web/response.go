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

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tomoncle/workforce/database"
	"github.com/tomoncle/workforce/domain"
	"github.com/tomoncle/workforce/repository"
)

const (
	applicationName = "workforceApp"

	HeaderAlert  = "X-" + applicationName + "-alert"
	HeaderError  = "X-" + applicationName + "-error"
	HeaderParams = "X-" + applicationName + "-params"

	maxBodyBytes = 1 << 20
)

var errMalformedBody = errors.New("malformed request body")

// Problem is the JSON body of every error response.
type Problem struct {
	Title       string            `json:"title"`
	Status      int               `json:"status"`
	Detail      string            `json:"detail,omitempty"`
	Path        string            `json:"path,omitempty"`
	Message     string            `json:"message,omitempty"`
	EntityName  string            `json:"entityName,omitempty"`
	ErrorKey    string            `json:"errorKey,omitempty"`
	FieldErrors []FieldErrorEntry `json:"fieldErrors,omitempty"`
}

type FieldErrorEntry struct {
	ObjectName string `json:"objectName"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

// AlertError rejects a request with a 400 and the error alert headers.
type AlertError struct {
	Entity  string
	Key     string
	Message string
}

func (e *AlertError) Error() string { return e.Message }

func badRequestAlert(message, entity, key string) *AlertError {
	return &AlertError{Entity: entity, Key: key, Message: message}
}

func createdAlert(w http.ResponseWriter, entity, param string) {
	setAlert(w, fmt.Sprintf("%s.%s.created", applicationName, entity), param)
}

func updatedAlert(w http.ResponseWriter, entity, param string) {
	setAlert(w, fmt.Sprintf("%s.%s.updated", applicationName, entity), param)
}

func deletedAlert(w http.ResponseWriter, entity, param string) {
	setAlert(w, fmt.Sprintf("%s.%s.deleted", applicationName, entity), param)
}

func setAlert(w http.ResponseWriter, message, param string) {
	w.Header().Set(HeaderAlert, message)
	w.Header().Set(HeaderParams, param)
}

func setFailureAlert(w http.ResponseWriter, entity, key string) {
	w.Header().Set(HeaderError, "error."+key)
	w.Header().Set(HeaderParams, entity)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("encode response: %v", err)
	}
}

// ReadJSON decodes a single non-null JSON document of at most 1 MiB into dst.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	if bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("%w: body must not be null", errMalformedBody)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// WriteError translates err into a problem response. entity names the
// resource for alert headers and may be empty.
func WriteError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	var (
		alert *AlertError
		field *domain.FieldError
	)
	switch {
	case errors.As(err, &alert):
		setFailureAlert(w, alert.Entity, alert.Key)
		WriteJSON(w, http.StatusBadRequest, &Problem{
			Title:      alert.Message,
			Status:     http.StatusBadRequest,
			Path:       r.URL.Path,
			Message:    "error." + alert.Key,
			EntityName: alert.Entity,
			ErrorKey:   alert.Key,
		})
	case errors.Is(err, repository.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, nil)
	case errors.As(err, &field):
		setFailureAlert(w, entity, "validation")
		WriteJSON(w, http.StatusBadRequest, &Problem{
			Title:   "Method argument not valid",
			Status:  http.StatusBadRequest,
			Path:    r.URL.Path,
			Message: "error.validation",
			FieldErrors: []FieldErrorEntry{
				{ObjectName: entity, Field: field.Field, Message: field.Message},
			},
		})
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, errMalformedBody),
		errors.Is(err, repository.ErrInvalidSort):
		writeProblem(w, r, http.StatusBadRequest, err)
	case database.IsDuplicateKey(err):
		WriteError(w, r, entity, badRequestAlert("Entity already exists", entity, "idexists"))
	default:
		log.WithError(err).WithField("request_id", RequestID(r.Context())).
			Errorf("%s %s failed", r.Method, r.URL.Path)
		writeProblem(w, r, http.StatusInternalServerError, nil)
	}
}

// writeProblem renders a generic problem; detail is only exposed for client errors.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail error) {
	p := &Problem{Title: http.StatusText(status), Status: status, Path: r.URL.Path}
	if detail != nil && status < http.StatusInternalServerError {
		p.Detail = detail.Error()
	}
	switch status {
	case http.StatusNotFound:
		p.Message = "error.http.404"
	case http.StatusBadRequest:
		p.Message = "error.http.400"
	case http.StatusInternalServerError:
		p.Message = "error.http.500"
	}
	WriteJSON(w, status, p)
}
