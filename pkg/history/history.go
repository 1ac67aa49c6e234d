/*
 * Copyright 2025 The Trapwatch Authors.
 *
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

// Package history keeps an on-box SQLite log of classification outcomes so
// operators can see what the pipeline did without shipping logs off-site.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

// Detection is one completed classification job.
type Detection struct {
	ID        string        `json:"id"`
	File      string        `json:"file"`
	Score     float64       `json:"score"`
	Duration  time.Duration `json:"duration"`
	Triggered bool          `json:"triggered"`
	Timestamp time.Time     `json:"timestamp"`
}

// Store persists detections in SQLite.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

// Open creates or opens the history database.
func Open(path string, log logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: log,
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS detections (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			score REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			triggered BOOLEAN NOT NULL DEFAULT FALSE,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_detections_timestamp ON detections(timestamp);
	`)

	return err
}

// Record persists one detection.
func (s *Store) Record(ctx context.Context, d Detection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO detections (id, file, score, duration_ms, triggered, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.File, d.Score, d.Duration.Milliseconds(), d.Triggered, d.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("recording detection: %w", err)
	}

	return nil
}

// Recent returns the newest detections, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Detection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file, score, duration_ms, triggered, timestamp
		FROM detections
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("failed to close detection rows")
		}
	}()

	var detections []Detection

	for rows.Next() {
		var (
			d          Detection
			durationMS int64
		)

		if err := rows.Scan(&d.ID, &d.File, &d.Score, &durationMS, &d.Triggered, &d.Timestamp); err != nil {
			return nil, err
		}

		d.Duration = time.Duration(durationMS) * time.Millisecond
		detections = append(detections, d)
	}

	return detections, rows.Err()
}

// Prune removes detections older than the retention window and reports how
// many rows were deleted.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := s.db.ExecContext(ctx, `DELETE FROM detections WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
