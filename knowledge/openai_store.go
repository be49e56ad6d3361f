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

package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go/v3"
)

// OpenAIStore implements Store over OpenAI vector stores. Files are uploaded
// with the assistants purpose and attached to the store one by one.
type OpenAIStore struct {
	client openai.Client
	logger *slog.Logger
}

// NewOpenAIStore wraps an openai client.
func NewOpenAIStore(client openai.Client, logger *slog.Logger) *OpenAIStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIStore{client: client, logger: logger}
}

func (s *OpenAIStore) Create(ctx context.Context, name string) (string, error) {
	store, err := s.client.VectorStores.New(ctx, openai.VectorStoreNewParams{
		Name: openai.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create vector store %q: %w", name, err)
	}
	return store.ID, nil
}

func (s *OpenAIStore) Ingest(ctx context.Context, storeID string, paths []string) error {
	for _, path := range paths {
		if err := s.ingestFile(ctx, storeID, path); err != nil {
			return err
		}
	}
	return nil
}

func (s *OpenAIStore) ingestFile(ctx context.Context, storeID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	file, err := s.client.Files.New(ctx, openai.FileNewParams{
		File:    f,
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}

	_, err = s.client.VectorStores.Files.New(ctx, storeID, openai.VectorStoreFileNewParams{
		FileID: file.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to attach %s to vector store %s: %w", path, storeID, err)
	}

	s.logger.Debug("ingested file",
		slog.String("path", path),
		slog.String("file_id", file.ID),
		slog.String("store_id", storeID))
	return nil
}
