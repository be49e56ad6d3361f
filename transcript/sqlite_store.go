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

// Package transcript persists the question/answer records a pipeline run
// accumulates. Stores are append-only: records are never updated or removed.
package transcript

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantfold/analyst-go/analyst"
)

// SQLiteStore is a SQLite-based implementation of the transcript store.
//
// By default, it uses an in-memory database that is lost when the process
// ends. For persistent storage, provide a file path DSN.
type SQLiteStore struct {
	dbDSN string
	table string
	db    *sql.DB
	mu    sync.Mutex
}

// SQLiteStoreParams configures a SQLiteStore.
type SQLiteStoreParams struct {
	// Optional database data source name.
	// Defaults to "file::memory:?cache=shared".
	DBDataSourceName string

	// Optional name of the table to store records.
	// Defaults to "answer_records".
	Table string
}

// NewSQLiteStore initializes the SQLite transcript store.
func NewSQLiteStore(ctx context.Context, params SQLiteStoreParams) (_ *SQLiteStore, err error) {
	s := &SQLiteStore{
		dbDSN: cmp.Or(params.DBDataSourceName, "file::memory:?cache=shared"),
		table: cmp.Or(params.Table, "answer_records"),
	}

	defer func() {
		if err != nil && s.db != nil {
			if e := s.db.Close(); e != nil {
				err = errors.Join(err, e)
			}
		}
	}()

	s.db, err = sql.Open("sqlite3", s.dbDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite3 database: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, `PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	if err = s.initDB(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Append(ctx context.Context, runID string, record analyst.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf(`INSERT INTO "%s" (run_id, question, answer) VALUES (?, ?, ?)`, s.table),
		runID, record.Question, record.Answer,
	)
	if err != nil {
		return fmt.Errorf("error inserting answer record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Records(ctx context.Context, runID string) (_ []analyst.AnswerRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT question, answer FROM "%s"
		WHERE run_id = ?
		ORDER BY id ASC
	`, s.table), runID)
	if err != nil {
		return nil, fmt.Errorf("error querying answer records: %w", err)
	}
	defer func() {
		if e := rows.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("error closing sql.Rows: %w", e))
		}
	}()

	var records []analyst.AnswerRecord
	for rows.Next() {
		var record analyst.AnswerRecord
		if err = rows.Scan(&record.Question, &record.Answer); err != nil {
			return nil, fmt.Errorf("sql rows scan error: %w", err)
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("sql rows scan error: %w", err)
	}
	return records, nil
}

// Initialize the database schema.
func (s *SQLiteStore) initDB(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s" (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, s.table))
	if err != nil {
		return fmt.Errorf("error creating records table: %w", err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS "idx_%s_run_id" ON "%s" (run_id, id)`,
		s.table, s.table))
	if err != nil {
		return fmt.Errorf("error creating index: %w", err)
	}
	return nil
}

// Close the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
