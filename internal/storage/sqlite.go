// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/foresight/augur/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	// Cascade deletes depend on this pragma; SQLite defaults it off.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);

	CREATE TABLE IF NOT EXISTS predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id INTEGER NOT NULL,
		prediction_text TEXT NOT NULL,
		confidence_score REAL NOT NULL,
		key_factors TEXT,
		caveats TEXT,
		model_used TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (query_id) REFERENCES queries(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_query_id ON predictions(query_id);

	CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		snippet TEXT,
		url TEXT,
		source_name TEXT,
		retrieved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (query_id) REFERENCES queries(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sources_query_id ON sources(query_id);
	`
	_, err := db.Exec(schema)
	return err
}

// SavePrediction writes the query, prediction, and sources transactionally.
func (s *SQLiteStorage) SavePrediction(ctx context.Context, queryText string, result *models.PredictionResult) (*SaveReceipt, error) {
	factorsJSON, err := json.Marshal(result.KeyFactors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key factors: %w", err)
	}
	caveatsJSON, err := json.Marshal(result.Caveats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal caveats: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO queries (query_text) VALUES (?)`, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to insert query: %w", err)
	}
	queryID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO predictions (query_id, prediction_text, confidence_score, key_factors, caveats, model_used)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		queryID, result.Prediction, result.ConfidenceScore, string(factorsJSON), string(caveatsJSON), result.ModelUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prediction: %w", err)
	}
	predictionID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	sourceIDs := make([]int64, 0, len(result.Sources))
	for _, src := range result.Sources {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO sources (query_id, title, snippet, url, source_name)
			 VALUES (?, ?, ?, ?, ?)`,
			queryID, src.Title, src.Snippet, src.URL, src.SourceName)
		if err != nil {
			return nil, fmt.Errorf("failed to insert source: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		sourceIDs = append(sourceIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &SaveReceipt{
		QueryID:      queryID,
		PredictionID: predictionID,
		SourceIDs:    sourceIDs,
	}, nil
}

// RecentQueries lists queries newest-first with their predictions attached.
func (s *SQLiteStorage) RecentQueries(ctx context.Context, limit int) ([]*models.StoredQuery, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query_text, created_at FROM queries ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []*models.StoredQuery
	for rows.Next() {
		var q models.StoredQuery
		if err := rows.Scan(&q.ID, &q.QueryText, &q.CreatedAt); err != nil {
			return nil, err
		}
		queries = append(queries, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, q := range queries {
		predictions, err := s.predictionsForQuery(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		q.Predictions = predictions
	}
	return queries, nil
}

// GetQuery returns one query with predictions and sources, or ErrNotFound.
func (s *SQLiteStorage) GetQuery(ctx context.Context, id int64) (*models.StoredQuery, error) {
	var q models.StoredQuery
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query_text, created_at FROM queries WHERE id = ?`, id,
	).Scan(&q.ID, &q.QueryText, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if q.Predictions, err = s.predictionsForQuery(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query_id, title, snippet, url, source_name, retrieved_at
		 FROM sources WHERE query_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var src models.StoredSource
		if err := rows.Scan(&src.ID, &src.QueryID, &src.Title, &src.Snippet, &src.URL, &src.SourceName, &src.RetrievedAt); err != nil {
			return nil, err
		}
		q.Sources = append(q.Sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &q, nil
}

func (s *SQLiteStorage) predictionsForQuery(ctx context.Context, queryID int64) ([]models.StoredPrediction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query_id, prediction_text, confidence_score, key_factors, caveats, model_used, created_at
		 FROM predictions WHERE query_id = ? ORDER BY id`, queryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []models.StoredPrediction
	for rows.Next() {
		var p models.StoredPrediction
		var factorsJSON, caveatsJSON sql.NullString
		if err := rows.Scan(&p.ID, &p.QueryID, &p.PredictionText, &p.ConfidenceScore, &factorsJSON, &caveatsJSON, &p.ModelUsed, &p.CreatedAt); err != nil {
			return nil, err
		}
		if factorsJSON.Valid && factorsJSON.String != "" {
			if err := json.Unmarshal([]byte(factorsJSON.String), &p.KeyFactors); err != nil {
				return nil, fmt.Errorf("failed to unmarshal key factors: %w", err)
			}
		}
		if caveatsJSON.Valid && caveatsJSON.String != "" {
			if err := json.Unmarshal([]byte(caveatsJSON.String), &p.Caveats); err != nil {
				return nil, fmt.Errorf("failed to unmarshal caveats: %w", err)
			}
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// DeleteQuery removes a query; predictions and sources cascade.
func (s *SQLiteStorage) DeleteQuery(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats summarizes stored history.
func (s *SQLiteStorage) Stats(ctx context.Context) (*models.StoreStats, error) {
	var stats models.StoreStats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queries`).Scan(&stats.Queries); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&stats.Predictions); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&stats.Sources); err != nil {
		return nil, err
	}
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT AVG(confidence_score) FROM predictions`).Scan(&avg); err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AvgConfidence = avg.Float64
	}
	return &stats, nil
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
