// Package memory implements an in-memory artifact Store for tests.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"psephos/internal/artifact/core"
)

type entry struct {
	info    core.Info
	payload []byte
}

// Store implements core.Store backed by process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]entry
}

// New returns an in-memory artifact store.
func New() *Store { return &Store{objs: make(map[string]entry)} }

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Put stores a new artifact; errors if key exists.
func (s *Store) Put(_ context.Context, key string, payload []byte, contentType string) (core.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[key]; exists {
		return core.Info{}, fmt.Errorf("artifact %s already exists", key)
	}
	sum := sha256.Sum256(payload)
	cpy := make([]byte, len(payload))
	copy(cpy, payload)
	info := core.Info{
		Key:         key,
		Size:        int64(len(payload)),
		ContentType: contentType,
		ETag:        hex.EncodeToString(sum[:]),
		PublishedAt: time.Now().UTC(),
	}
	s.objs[key] = entry{info: info, payload: cpy}
	return info, nil
}

// Get returns artifact metadata and a copy of the payload.
func (s *Store) Get(_ context.Context, key string) (core.Info, []byte, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return core.Info{}, nil, fmt.Errorf("artifact %s not found", key)
	}
	cpy := make([]byte, len(obj.payload))
	copy(cpy, obj.payload)
	return obj.info, cpy, nil
}

// List returns artifacts with the given key prefix, sorted by key.
func (s *Store) List(_ context.Context, prefix string) ([]core.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var infos []core.Info
	for key, obj := range s.objs {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, obj.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignURL is not supported on the in-memory backend.
func (s *Store) PresignURL(context.Context, string, time.Duration) (string, error) {
	return "", core.ErrUnsupported
}
