package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/coderr/backend/internal/application/media"
)

var _ media.ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage keeps objects in process memory. It backs local
// development and tests; objects are served by the /media route.
type StubObjectStorage struct {
	// BaseURL prefixes every object URL
	BaseURL string

	mu      sync.RWMutex
	objects map[string]storedObject
}

type storedObject struct {
	data        []byte
	contentType string
}

// NewStubObjectStorage creates an empty stub serving URLs below baseURL
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8000/media"
	}
	return &StubObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]storedObject),
	}
}

// Upload stores a copy of data
func (s *StubObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// DeleteObject forgets key
func (s *StubObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// ObjectExists reports whether key was uploaded
func (s *StubObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// URL returns {BaseURL}/{key}
func (s *StubObjectStorage) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	return joinURL(s.BaseURL, key), nil
}

// Open returns the stored bytes and content type of key
func (s *StubObjectStorage) Open(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}

// Len returns the number of stored objects
func (s *StubObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
