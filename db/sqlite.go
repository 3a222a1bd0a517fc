package db

import (
	"database/sql"
	"errors"
	"time"

	"cardioscore/ml"
	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database used for the prediction audit log.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50) NOT NULL,
        predicted_label INTEGER NOT NULL,
        confidence REAL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at
        ON predictions (created_at DESC);
    CREATE TABLE IF NOT EXISTS model_metrics (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50) NOT NULL,
        metric VARCHAR(50) NOT NULL,
        value REAL NOT NULL,
        recorded_at DATETIME NOT NULL,
        UNIQUE(model_name, metric)
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close releases the database handle. Intended for shutdown and tests.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SavePredictions appends one audit row per served prediction detail.
func SavePredictions(modelName string, details []ml.Detail) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if modelName == "" {
		return errors.New("model name required")
	}
	if len(details) == 0 {
		return nil
	}

	stmt, err := database.Prepare(`
        INSERT INTO predictions (model_name, predicted_label, confidence, created_at)
        VALUES (?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, detail := range details {
		var confidence interface{}
		if detail.Confidence != nil {
			confidence = *detail.Confidence
		}
		if _, err := stmt.Exec(modelName, detail.Label, confidence, now); err != nil {
			return err
		}
	}
	return nil
}

// SaveModelMetrics records the held-out metrics captured at startup.
func SaveModelMetrics(modelName string, metrics map[string]float64) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	stmt, err := database.Prepare(`
        INSERT OR REPLACE INTO model_metrics (model_name, metric, value, recorded_at)
        VALUES (?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for metric, value := range metrics {
		if _, err := stmt.Exec(modelName, metric, value, now); err != nil {
			return err
		}
	}
	return nil
}

// PredictionRecord is one audited prediction row.
type PredictionRecord struct {
	ModelName  string    `json:"model_name"`
	Label      int       `json:"label"`
	Confidence *float64  `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// QueryRecentPredictions returns the newest audit rows, newest first.
func QueryRecentPredictions(limit int) ([]PredictionRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := database.Query(`
        SELECT model_name, predicted_label, confidence, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var record PredictionRecord
		var confidence sql.NullFloat64
		if err := rows.Scan(&record.ModelName, &record.Label, &confidence, &record.CreatedAt); err != nil {
			return nil, err
		}
		if confidence.Valid {
			value := confidence.Float64
			record.Confidence = &value
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
