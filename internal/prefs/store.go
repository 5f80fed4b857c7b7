// Package prefs is a fail-soft wrapper over key/value persistence. Values are
// stored as JSON text. No method returns an error: failures are logged and the
// caller continues.
package prefs

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Store reads and writes JSON-encoded preferences.
type Store struct {
	backend Backend
	log     *zap.Logger
	ns      string
	mu      *sync.Mutex
	locks   *lockTable
}

type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (t *lockTable) get(ns string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[ns]
	if !ok {
		l = &sync.Mutex{}
		t.locks[ns] = l
	}
	return l
}

// New creates a store over backend. A nil logger discards log output.
func New(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	locks := &lockTable{locks: make(map[string]*sync.Mutex)}
	return &Store{
		backend: backend,
		log:     log,
		mu:      locks.get(""),
		locks:   locks,
	}
}

// Namespace returns a view whose keys are prefixed with ns. Views over the
// same namespace share one lock.
func (s *Store) Namespace(ns string) *Store {
	full := ns
	if s.ns != "" {
		full = s.ns + "/" + ns
	}
	return &Store{
		backend: s.backend,
		log:     s.log,
		ns:      full,
		mu:      s.locks.get(full),
		locks:   s.locks,
	}
}

func (s *Store) key(k string) string {
	if s.ns == "" {
		return k
	}
	return s.ns + "/" + k
}

// Set encodes value and writes it. If encoding fails nothing is written.
func (s *Store) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error("prefs: error encoding value", zap.String("key", s.key(key)), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Put(s.key(key), data); err != nil {
		s.log.Error("prefs: error saving value", zap.String("key", s.key(key)), zap.Error(err))
	}
}

// Get decodes the stored value into dst. It reports false when the key is
// unset, unreadable or undecodable.
func (s *Store) Get(key string, dst any) bool {
	s.mu.Lock()
	data, ok, err := s.backend.Get(s.key(key))
	s.mu.Unlock()

	if err != nil {
		s.log.Error("prefs: error reading value", zap.String("key", s.key(key)), zap.Error(err))
		return false
	}
	if !ok || len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Error("prefs: error decoding value", zap.String("key", s.key(key)), zap.Error(err))
		return false
	}
	return true
}

// GetString is Get for string values.
func (s *Store) GetString(key string) (string, bool) {
	var v string
	if !s.Get(key, &v) {
		return "", false
	}
	return v, true
}

// GetRaw returns the stored JSON text.
func (s *Store) GetRaw(key string) (json.RawMessage, bool) {
	var v json.RawMessage
	if !s.Get(key, &v) {
		return nil, false
	}
	return v, true
}

// Remove deletes key.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(s.key(key)); err != nil {
		s.log.Error("prefs: error removing value", zap.String("key", s.key(key)), zap.Error(err))
	}
}
