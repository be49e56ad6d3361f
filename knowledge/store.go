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

// Package knowledge manages the content-addressed retrieval index the
// pipeline grounds its answers on: one store is created and ingested per
// pipeline run, then queried read-only per question.
package knowledge

import (
	"context"
	"io/fs"
	"path/filepath"
)

// Store is the knowledge-store service consumed by the pipeline.
type Store interface {
	// Create provisions a new, empty store and returns its id.
	Create(ctx context.Context, name string) (string, error)

	// Ingest uploads the given files into the store.
	Ingest(ctx context.Context, storeID string, paths []string) error
}

// FilePathsInDirectory lists every regular file under dir, recursively.
func FilePathsInDirectory(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
