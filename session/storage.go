package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Storage is the persistence backend for session state, the stand-in
// for the browser's local storage. Absent keys read as found == false.
type Storage interface {
	Get(key string) (value string, found bool)
	Set(key, value string) error
	Delete(key string) error
	Keys() []string
}

// MemoryStorage is a Storage held entirely in memory. Used in tests and
// anywhere persistence across restarts is not wanted.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

// FileStorage persists session state as a flat JSON object in a single
// file, written atomically via a temp file rename.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return errors.Wrap(err, "[FileStorage.Set] load")
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return errors.Wrap(err, "[FileStorage.Delete] load")
	}
	delete(values, key)
	return f.save(values)
}

func (f *FileStorage) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	return keys
}

func (f *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStorage.load] ReadFile")
	}
	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "[FileStorage.load] Unmarshal")
	}
	return values, nil
}

func (f *FileStorage) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStorage.save] Marshal")
	}
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStorage.save] MkdirAll")
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStorage.save] WriteFile")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "[FileStorage.save] Rename")
	}
	return nil
}
