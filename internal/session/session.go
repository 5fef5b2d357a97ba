// Package session holds process-local UI state that is not persisted.
package session

import (
	"strconv"
	"sync"
)

// Key prefixes and names.
const (
	folderStatePrefix = "questlog.folderState."
	KeyShowPrimary    = "questlog.trackerShowPrimary"
)

// Collapse state values.
const (
	Collapsed = "collapsed"
	Expanded  = "expanded"
)

// FolderStateKey returns the key that holds a quest's collapse state.
func FolderStateKey(questID string) string {
	return folderStatePrefix + questID
}

// Store is a string key/value map scoped to the running process.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Bool parses the value under key, returning def when absent or malformed.
func (s *Store) Bool(key string, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SetBool stores a boolean as its string form.
func (s *Store) SetBool(key string, v bool) {
	s.Set(key, strconv.FormatBool(v))
}
