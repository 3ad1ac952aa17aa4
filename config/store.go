package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/heavensdreams/rental-api/models"
)

// Store owns the flat JSON document. Reads hand out deep copies, writes go
// through Mutate which persists the whole file with a tmp-write + rename.
type Store struct {
	path string
	mu   sync.RWMutex
	doc  *models.Document
}

func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.doc = emptyDocument()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	doc := &models.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("data file is not valid JSON: %w", err)
	}
	if doc.Users == nil || doc.Groups == nil || doc.Apartments == nil {
		return nil, errors.New("data file must contain users, groups and apartments arrays")
	}
	normalize(doc)

	s.doc = doc
	return s, nil
}

func emptyDocument() *models.Document {
	return &models.Document{
		Users:      []models.User{},
		Groups:     []models.Group{},
		Apartments: []models.Apartment{},
		UserGroups: []models.UserGroup{},
		Logs:       []models.LogEntry{},
	}
}

// normalize backfills optional arrays so callers never see nil slices where
// the document format promises arrays.
func normalize(doc *models.Document) {
	if doc.UserGroups == nil {
		doc.UserGroups = []models.UserGroup{}
	}
	if doc.Logs == nil {
		doc.Logs = []models.LogEntry{}
	}
	for i := range doc.Apartments {
		if doc.Apartments[i].Groups == nil {
			doc.Apartments[i].Groups = []string{}
		}
		if doc.Apartments[i].Bookings == nil {
			doc.Apartments[i].Bookings = []models.Booking{}
		}
		if doc.Apartments[i].Photos == nil {
			doc.Apartments[i].Photos = []models.Photo{}
		}
	}
}

// Snapshot returns a deep copy of the document. Callers may read it without
// holding any lock; it never observes later mutations.
func (s *Store) Snapshot() (*models.Document, error) {
	s.mu.RLock()
	data, err := json.Marshal(s.doc)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	copied := &models.Document{}
	if err := json.Unmarshal(data, copied); err != nil {
		return nil, err
	}
	normalize(copied)
	return copied, nil
}

// Mutate runs fn against the live document under the write lock and persists
// the result. If fn returns an error nothing is written and the in-memory
// document is rolled back to its prior state.
func (s *Store) Mutate(fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := json.Marshal(s.doc)
	if err != nil {
		return err
	}

	if err := fn(s.doc); err != nil {
		restored := &models.Document{}
		if uerr := json.Unmarshal(before, restored); uerr == nil {
			normalize(restored)
			s.doc = restored
		}
		return err
	}

	return s.save()
}

// save writes the whole document to a temp file and renames it into place.
// Must be called with the write lock held.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}

// BackupTo copies the current document to dst, used by the daily snapshot
// loop in main.
func (s *Store) BackupTo(dst string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func (s *Store) Path() string {
	return s.path
}
