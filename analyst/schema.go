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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// ReflectSchema builds the JSON schema of T as a plain map, suitable both
// for provider response formats and for local validation.
func ReflectSchema[T any](allowAdditionalProperties bool) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		Anonymous:                 true,
		AllowAdditionalProperties: allowAdditionalProperties,
		ExpandedStruct:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to JSON-marshal JSON schema: %w", err)
	}
	var result map[string]any
	if err = json.Unmarshal(b, &result); err != nil {
		return nil, fmt.Errorf("failed to JSON-unmarshal JSON schema: %w", err)
	}
	return result, nil
}

// DecodeStageOutput validates a stage's raw JSON reply against the schema of
// T and unmarshals it. Any failure is a SchemaError: stage output that does
// not match its expected shape aborts the pipeline.
func DecodeStageOutput[T any](jsonStr string) (T, error) {
	var output T

	schemaMap, err := ReflectSchema[T](true)
	if err != nil {
		return output, SchemaErrorf("failed to reflect output schema: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return output, SchemaErrorf("failed to compile output schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonStr))
	if err != nil {
		return output, SchemaErrorf("failed to load and validate JSON: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		sb.WriteString("JSON validation failed with the following errors:\n")
		for _, e := range result.Errors() {
			_, _ = fmt.Fprintf(&sb, "- %s\n", e)
		}
		return output, NewSchemaError(sb.String())
	}

	if err = json.Unmarshal([]byte(jsonStr), &output); err != nil {
		return output, SchemaErrorf("failed to unmarshal JSON output: %w", err)
	}
	return output, nil
}
