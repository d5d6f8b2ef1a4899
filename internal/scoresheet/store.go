package scoresheet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Storage keys.
const (
	KeyPlayers = "faraway_players"
	KeyScores  = "faraway_scores"
	KeyRounds  = "faraway_rounds"
	KeySheetID = "faraway_sheet_id"
)

// Store is a string key/value store.
type Store interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// MemoryStore keeps values in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// FileStore keeps values in a JSON object on disk. Every Put rewrites the
// file through a temporary file and a rename.
type FileStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// OpenFileStore reads path, or starts empty if it does not exist.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return fs, nil
	case err != nil:
		return nil, fmt.Errorf("read score store: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fs.values); err != nil {
			return nil, fmt.Errorf("parse score store %s: %w", path, err)
		}
	}
	return fs, nil
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileStore) Put(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) flush() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".scores-*")
	if err != nil {
		return fmt.Errorf("write score store: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write score store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write score store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("write score store: %w", err)
	}
	return nil
}

// Save writes sheet to store.
func Save(store Store, s *Sheet) error {
	if err := s.validate(); err != nil {
		return err
	}
	players, err := json.Marshal(s.Players)
	if err != nil {
		return err
	}
	scores, err := json.Marshal(s.Scores)
	if err != nil {
		return err
	}
	for _, kv := range [][2]string{
		{KeySheetID, s.ID},
		{KeyPlayers, string(players)},
		{KeyScores, string(scores)},
		{KeyRounds, strconv.Itoa(s.Rounds)},
	} {
		if err := store.Put(kv[0], kv[1]); err != nil {
			return fmt.Errorf("save %s: %w", kv[0], err)
		}
	}
	return nil
}

// Load reads the sheet in store. ok is false when no players are stored.
// Stored players without scores get a fresh single round.
func Load(store Store) (s *Sheet, ok bool, err error) {
	rawPlayers, ok, err := store.Get(KeyPlayers)
	if err != nil || !ok {
		return nil, false, err
	}
	var players []string
	if err := json.Unmarshal([]byte(rawPlayers), &players); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", KeyPlayers, err)
	}
	if len(players) == 0 {
		return nil, false, nil
	}

	s, err = New(players)
	if err != nil {
		return nil, false, err
	}
	if id, ok, err := store.Get(KeySheetID); err != nil {
		return nil, false, err
	} else if ok && id != "" {
		s.ID = id
	}

	rawScores, haveScores, err := store.Get(KeyScores)
	if err != nil {
		return nil, false, err
	}
	rawRounds, haveRounds, err := store.Get(KeyRounds)
	if err != nil {
		return nil, false, err
	}
	if !haveScores || !haveRounds {
		return s, true, nil
	}

	if err := json.Unmarshal([]byte(rawScores), &s.Scores); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", KeyScores, err)
	}
	if s.Rounds, err = strconv.Atoi(rawRounds); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", KeyRounds, err)
	}
	if err := s.validate(); err != nil {
		return nil, false, fmt.Errorf("stored sheet: %w", err)
	}
	return s, true, nil
}
