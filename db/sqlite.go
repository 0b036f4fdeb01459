// Package db is the relational metadata store: dataset and analysis
// bookkeeping around the training pipeline.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// ErrNoRecord is returned when a dataset or analysis id is unknown.
var ErrNoRecord = errors.New("record not found")

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS datasets (
        id TEXT PRIMARY KEY,
        filename TEXT NOT NULL,
        path TEXT NOT NULL,
        uploaded_at DATETIME NOT NULL,
        columns_json TEXT,
        sample_json TEXT
    );
    CREATE TABLE IF NOT EXISTS analyses (
        id TEXT PRIMARY KEY,
        dataset_id TEXT NOT NULL,
        model_id TEXT NOT NULL,
        model_path TEXT NOT NULL,
        target_column TEXT NOT NULL,
        metrics_json TEXT,
        artifacts_json TEXT,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_analyses_dataset ON analyses(dataset_id);
    `
	_, err = database.Exec(query)
	return err
}

// CloseDB closes the database handle.
func CloseDB() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// DatasetRecord is one uploaded dataset's bookkeeping row.
type DatasetRecord struct {
	ID         string              `json:"id"`
	Filename   string              `json:"filename"`
	Path       string              `json:"-"`
	UploadedAt time.Time           `json:"uploaded_at"`
	Columns    []string            `json:"columns"`
	Sample     []map[string]string `json:"sample"`
}

// AnalysisRecord is one completed training run.
type AnalysisRecord struct {
	ID           string          `json:"id"`
	DatasetID    string          `json:"dataset_id"`
	ModelID      string          `json:"model_id"`
	ModelPath    string          `json:"-"`
	TargetColumn string          `json:"target_column"`
	Metrics      json.RawMessage `json:"metrics"`
	Artifacts    json.RawMessage `json:"artifacts"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InsertDataset records an uploaded dataset.
func InsertDataset(rec DatasetRecord) error {
	columns, err := json.Marshal(rec.Columns)
	if err != nil {
		return err
	}
	sample, err := json.Marshal(rec.Sample)
	if err != nil {
		return err
	}
	_, err = database.Exec(
		`INSERT INTO datasets (id, filename, path, uploaded_at, columns_json, sample_json) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.Path, rec.UploadedAt, string(columns), string(sample),
	)
	return err
}

// GetDataset looks up a dataset by id.
func GetDataset(id string) (*DatasetRecord, error) {
	row := database.QueryRow(
		`SELECT id, filename, path, uploaded_at, columns_json, sample_json FROM datasets WHERE id = ?`, id)

	var rec DatasetRecord
	var columns, sample string
	err := row.Scan(&rec.ID, &rec.Filename, &rec.Path, &rec.UploadedAt, &columns, &sample)
	if err == sql.ErrNoRows {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(columns), &rec.Columns); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sample), &rec.Sample); err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertAnalysis records a completed training run.
func InsertAnalysis(rec AnalysisRecord) error {
	_, err := database.Exec(
		`INSERT INTO analyses (id, dataset_id, model_id, model_path, target_column, metrics_json, artifacts_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DatasetID, rec.ModelID, rec.ModelPath, rec.TargetColumn,
		string(rec.Metrics), string(rec.Artifacts), rec.CreatedAt,
	)
	return err
}

// GetAnalysis looks up an analysis by id.
func GetAnalysis(id string) (*AnalysisRecord, error) {
	row := database.QueryRow(
		`SELECT id, dataset_id, model_id, model_path, target_column, metrics_json, artifacts_json, created_at
         FROM analyses WHERE id = ?`, id)

	var rec AnalysisRecord
	var metrics, artifacts string
	err := row.Scan(&rec.ID, &rec.DatasetID, &rec.ModelID, &rec.ModelPath, &rec.TargetColumn, &metrics, &artifacts, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	rec.Metrics = json.RawMessage(metrics)
	rec.Artifacts = json.RawMessage(artifacts)
	return &rec, nil
}

// ListAnalyses returns all analyses, newest first.
func ListAnalyses() ([]AnalysisRecord, error) {
	rows, err := database.Query(
		`SELECT id, dataset_id, model_id, model_path, target_column, metrics_json, artifacts_json, created_at
         FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var metrics, artifacts string
		if err := rows.Scan(&rec.ID, &rec.DatasetID, &rec.ModelID, &rec.ModelPath, &rec.TargetColumn, &metrics, &artifacts, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Metrics = json.RawMessage(metrics)
		rec.Artifacts = json.RawMessage(artifacts)
		out = append(out, rec)
	}
	return out, rows.Err()
}
