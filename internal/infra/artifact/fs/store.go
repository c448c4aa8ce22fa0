// Package fs implements the artifact store on the local filesystem. Keys map
// to relative file paths under the root; a JSON sidecar (filename + ".meta")
// carries content type, checksum, and publish time.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"psephos/internal/artifact/core"
)

// Store is a filesystem-backed artifact store rooted at a directory.
type Store struct {
	root string
}

// New returns a filesystem store rooted at path, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./artifacts"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &Store{root: root}, nil
}

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

type sidecar struct {
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag"`
	Size        int64     `json:"size"`
	PublishedAt time.Time `json:"published_at"`
}

// Put writes a new artifact; it fails when the key already exists.
func (s *Store) Put(_ context.Context, key string, payload []byte, contentType string) (core.Info, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return core.Info{}, fmt.Errorf("artifact %s already exists", key)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return core.Info{}, fmt.Errorf("create artifact dir: %w", err)
	}
	sum := sha256.Sum256(payload)
	meta := sidecar{
		ContentType: contentType,
		ETag:        hex.EncodeToString(sum[:]),
		Size:        int64(len(payload)),
		PublishedAt: time.Now().UTC(),
	}
	if err := os.WriteFile(dataPath, payload, 0o644); err != nil {
		return core.Info{}, fmt.Errorf("write artifact: %w", err)
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return core.Info{}, err
	}
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return core.Info{}, fmt.Errorf("write artifact meta: %w", err)
	}
	return s.infoFrom(key, meta), nil
}

// Get returns artifact metadata and payload.
func (s *Store) Get(_ context.Context, key string) (core.Info, []byte, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, nil, err
	}
	payload, err := os.ReadFile(dataPath)
	if err != nil {
		return core.Info{}, nil, fmt.Errorf("read artifact %s: %w", key, err)
	}
	meta, err := s.readSidecar(metaPath, payload)
	if err != nil {
		return core.Info{}, nil, err
	}
	return s.infoFrom(key, meta), payload, nil
}

// List returns artifacts whose keys start with prefix, sorted by key.
func (s *Store) List(_ context.Context, prefix string) ([]core.Info, error) {
	var infos []core.Info
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".meta") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		payload, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		meta, err := s.readSidecar(path+".meta", payload)
		if err != nil {
			return err
		}
		infos = append(infos, s.infoFrom(key, meta))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignURL is not supported on the filesystem backend.
func (s *Store) PresignURL(context.Context, string, time.Duration) (string, error) {
	return "", core.ErrUnsupported
}

func (s *Store) readSidecar(metaPath string, payload []byte) (sidecar, error) {
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		// Tolerate a lost sidecar: rebuild what can be derived.
		sum := sha256.Sum256(payload)
		return sidecar{ETag: hex.EncodeToString(sum[:]), Size: int64(len(payload))}, nil
	}
	var meta sidecar
	if err := json.Unmarshal(raw, &meta); err != nil {
		return sidecar{}, fmt.Errorf("decode artifact meta: %w", err)
	}
	return meta, nil
}

func (s *Store) infoFrom(key string, meta sidecar) core.Info {
	return core.Info{
		Key:         key,
		Size:        meta.Size,
		ContentType: meta.ContentType,
		ETag:        meta.ETag,
		PublishedAt: meta.PublishedAt,
	}
}

// sanitizeKey forbids traversal and absolute paths.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key traversal")
	}
	return clean, nil
}

func (s *Store) pathFor(key string) (dataPath, metaPath string, err error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(s.root, k)
	return dataPath, dataPath + ".meta", nil
}
