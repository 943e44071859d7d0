package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitgrid/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	identity_id TEXT PRIMARY KEY,
	payload     TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS session (
	id      INTEGER PRIMARY KEY CHECK (id = 1),
	payload TEXT NOT NULL
);
`

type SQLiteStore struct {
	path string
	log  *zap.Logger
	db   *sql.DB
}

func NewSQLiteStore(path string, log *zap.Logger) *SQLiteStore {
	return &SQLiteStore{
		path: path,
		log:  log,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("cache not initialized, run 'habitgrid init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	s.db = db

	// The schema is self-creating so an older cache file picks up new
	// tables on open.
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure cache schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) ReadDocument(identityID string) (models.Document, bool) {
	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM documents WHERE identity_id = ?", identityID,
	).Scan(&payload)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Warn("cache read failed, treating as miss",
				zap.String("identity", identityID),
				zap.Error(err),
			)
		}
		return models.Document{}, false
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		s.log.Warn("cached document corrupted, treating as absent",
			zap.String("identity", identityID),
			zap.Error(err),
		)
		return models.Document{}, false
	}

	doc.Normalize()
	return doc, true
}

func (s *SQLiteStore) WriteDocument(identityID string, doc models.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO documents (identity_id, payload, updated_at) VALUES (?, ?, ?)",
		identityID, string(payload), doc.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) Clear(identityID string) error {
	_, err := s.db.Exec("DELETE FROM documents WHERE identity_id = ?", identityID)
	return err
}

func (s *SQLiteStore) GetSession() (Session, bool) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM session WHERE id = 1").Scan(&payload)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Warn("session read failed, treating as signed out", zap.Error(err))
		}
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		s.log.Warn("stored session corrupted, treating as signed out", zap.Error(err))
		return Session{}, false
	}

	return sess, true
}

func (s *SQLiteStore) SaveSession(sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO session (id, payload) VALUES (1, ?)", string(payload),
	)
	return err
}

func (s *SQLiteStore) ClearSession() error {
	_, err := s.db.Exec("DELETE FROM session WHERE id = 1")
	return err
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
