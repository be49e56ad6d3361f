// Copyright 2025 The Quantfold Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analyst

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when required credentials or agent ids are
// missing. It is raised before any stage runs.
type ConfigurationError error

func NewConfigurationError(message string) ConfigurationError {
	return ConfigurationError(errors.New(message))
}

func ConfigurationErrorf(format string, a ...any) ConfigurationError {
	return ConfigurationError(fmt.Errorf(format, a...))
}

// EmptyResponseError is returned when the draft synthesizer's provider
// returns no usable text.
type EmptyResponseError error

func NewEmptyResponseError(message string) EmptyResponseError {
	return EmptyResponseError(errors.New(message))
}

func EmptyResponseErrorf(format string, a ...any) EmptyResponseError {
	return EmptyResponseError(fmt.Errorf(format, a...))
}

// SchemaError is returned when a stage's JSON output fails to parse against
// its expected shape.
type SchemaError error

func NewSchemaError(message string) SchemaError {
	return SchemaError(errors.New(message))
}

func SchemaErrorf(format string, a ...any) SchemaError {
	return SchemaError(fmt.Errorf(format, a...))
}

// IngestionError is returned when knowledge-store setup fails.
type IngestionError error

func NewIngestionError(message string) IngestionError {
	return IngestionError(errors.New(message))
}

func IngestionErrorf(format string, a ...any) IngestionError {
	return IngestionError(fmt.Errorf(format, a...))
}
