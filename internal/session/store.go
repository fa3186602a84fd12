package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const recordFile = "session.json"

// Record is the durable subset of a session that survives process
// restarts: the token pair and the last-resolved role.
type Record struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Role         string `json:"role,omitempty"`
}

// Store persists the current session record on the local filesystem.
type Store struct {
	baseDir string
}

// NewStore creates a new session store.
// If baseDir is empty, uses ~/.chargectl/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".chargectl")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("session store initialized")

	return &Store{baseDir: baseDir}, nil
}

// Load reads the stored record. A store that has never been written reads
// back as an empty record, not an error.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("failed to read session record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse session record: %w", err)
	}

	return rec, nil
}

// Save merges the provided fields into the stored record and writes the
// result in a single atomic step. Empty fields leave the stored value
// untouched, and a token pair saved together can never be observed torn.
func (s *Store) Save(upd Record) error {
	rec, err := s.Load()
	if err != nil {
		return err
	}

	if upd.AccessToken != "" {
		rec.AccessToken = upd.AccessToken
	}
	if upd.RefreshToken != "" {
		rec.RefreshToken = upd.RefreshToken
	}
	if upd.Role != "" {
		rec.Role = upd.Role
	}

	return s.write(rec)
}

// Clear deletes the stored record. Safe to call when nothing is stored.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session record: %w", err)
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.baseDir, recordFile)
}

// write replaces the record file via temp file + rename so a crash mid-
// write never leaves a partial record behind.
func (s *Store) write(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	tempPath := s.path() + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session record: %w", err)
	}

	if err := os.Rename(tempPath, s.path()); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session record: %w", err)
	}

	return nil
}
