package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/models"
)

type cacheFile struct {
	Version   int                        `json:"version"`
	Session   *Session                   `json:"session,omitempty"`
	Documents map[string]json.RawMessage `json:"documents"`
}

type JSONStore struct {
	path  string
	log   *zap.Logger
	cache *cacheFile
}

func NewJSONStore(path string, log *zap.Logger) *JSONStore {
	return &JSONStore{
		path: path,
		log:  log,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("cache already initialized at %s", s.path)
	}

	s.cache = &cacheFile{
		Version:   1,
		Documents: make(map[string]json.RawMessage),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("cache not initialized, run 'habitgrid init' first")
		}
		return fmt.Errorf("failed to read cache: %w", err)
	}

	s.cache = &cacheFile{}
	if err := json.Unmarshal(data, s.cache); err != nil {
		// A corrupted cache must never block the caller. Start over empty.
		s.log.Warn("cache file corrupted, treating as empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		s.cache = &cacheFile{Version: 1}
	}

	if s.cache.Documents == nil {
		s.cache.Documents = make(map[string]json.RawMessage)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	return nil
}

func (s *JSONStore) ReadDocument(identityID string) (models.Document, bool) {
	if s.cache == nil {
		return models.Document{}, false
	}

	raw, ok := s.cache.Documents[identityID]
	if !ok {
		return models.Document{}, false
	}

	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.log.Warn("cached document corrupted, treating as absent",
			zap.String("identity", identityID),
			zap.Error(err),
		)
		return models.Document{}, false
	}

	doc.Normalize()
	return doc, true
}

func (s *JSONStore) WriteDocument(identityID string, doc models.Document) error {
	if s.cache == nil {
		return fmt.Errorf("cache not loaded")
	}

	doc.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	s.cache.Documents[identityID] = raw
	return s.save()
}

func (s *JSONStore) Clear(identityID string) error {
	if s.cache == nil {
		return fmt.Errorf("cache not loaded")
	}

	delete(s.cache.Documents, identityID)
	return s.save()
}

func (s *JSONStore) GetSession() (Session, bool) {
	if s.cache == nil || s.cache.Session == nil {
		return Session{}, false
	}
	return *s.cache.Session, true
}

func (s *JSONStore) SaveSession(sess Session) error {
	if s.cache == nil {
		return fmt.Errorf("cache not loaded")
	}

	s.cache.Session = &sess
	return s.save()
}

func (s *JSONStore) ClearSession() error {
	if s.cache == nil {
		return fmt.Errorf("cache not loaded")
	}

	s.cache.Session = nil
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
