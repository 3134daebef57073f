// Package db keeps a registry of the model artifacts each process loaded.
package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"airpredict/ml"
)

var database *sql.DB

var ErrNotInitialized = errors.New("database not initialized")

// ArtifactRecord is one artifact file seen by one process start.
type ArtifactRecord struct {
	RunID    string    `json:"run_id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	SHA256   string    `json:"sha256"`
	Policy   string    `json:"policy"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NewArtifactRecord stamps a loaded artifact file with the run it belongs to.
func NewArtifactRecord(runID, policy string, file ml.ArtifactFile, loadedAt time.Time) ArtifactRecord {
	return ArtifactRecord{
		RunID:    runID,
		Name:     file.Name,
		Kind:     file.Kind,
		Path:     file.Path,
		Size:     file.Size,
		SHA256:   file.SHA256,
		Policy:   policy,
		LoadedAt: loadedAt.UTC(),
	}
}

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS artifacts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        name TEXT NOT NULL,
        kind TEXT NOT NULL,
        path TEXT NOT NULL,
        size INTEGER NOT NULL,
        sha256 TEXT NOT NULL,
        policy TEXT NOT NULL,
        loaded_at DATETIME NOT NULL,
        UNIQUE(run_id, name)
    );
    CREATE INDEX IF NOT EXISTS idx_artifacts_loaded_at ON artifacts(loaded_at);
    `

	_, err = database.Exec(query)
	return err
}

func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// RecordArtifacts stores every artifact of one run in a single transaction.
func RecordArtifacts(records []ArtifactRecord) error {
	if database == nil {
		return ErrNotInitialized
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := database.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT OR REPLACE INTO artifacts (run_id, name, kind, path, size, sha256, policy, loaded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if r.RunID == "" || r.Name == "" {
			tx.Rollback()
			return errors.New("artifact record needs run id and name")
		}
		if _, err := stmt.Exec(r.RunID, r.Name, r.Kind, r.Path, r.Size, r.SHA256, r.Policy, r.LoadedAt); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func RecordArtifact(record ArtifactRecord) error {
	return RecordArtifacts([]ArtifactRecord{record})
}

// ListArtifacts returns the newest records first. A limit of zero or less
// returns every record.
func ListArtifacts(limit int) ([]ArtifactRecord, error) {
	if database == nil {
		return nil, ErrNotInitialized
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := database.Query(`
        SELECT run_id, name, kind, path, size, sha256, policy, loaded_at
        FROM artifacts
        ORDER BY loaded_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ArtifactRecord, 0)
	for rows.Next() {
		var r ArtifactRecord
		if err := rows.Scan(&r.RunID, &r.Name, &r.Kind, &r.Path, &r.Size, &r.SHA256, &r.Policy, &r.LoadedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// PreviousDigest returns the sha256 the named artifact had in the most recent
// run other than runID. ok is false when there is no earlier record.
func PreviousDigest(name, runID string) (digest string, ok bool, err error) {
	if database == nil {
		return "", false, ErrNotInitialized
	}
	err = database.QueryRow(`
        SELECT sha256 FROM artifacts
        WHERE name = ? AND run_id != ?
        ORDER BY loaded_at DESC, id DESC
        LIMIT 1`, name, runID).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return digest, true, nil
}
