package artifact_test

import (
	"context"
	"errors"
	"testing"

	"psephos/internal/artifact"
	fsdriver "psephos/internal/infra/artifact/fs"
	memdriver "psephos/internal/infra/artifact/memory"
)

func openStores(t *testing.T) map[string]artifact.Store {
	t.Helper()
	fsStore, err := fsdriver.New(t.TempDir())
	if err != nil {
		t.Fatalf("open fs store: %v", err)
	}
	return map[string]artifact.Store{
		"fs":     fsStore,
		"memory": memdriver.New(),
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			payload := []byte("constituency,party,share\nE001,labour,42.0\n")
			info, err := store.Put(ctx, "runs/r1/comparison.csv", payload, "text/csv")
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != int64(len(payload)) {
				t.Fatalf("size = %d, want %d", info.Size, len(payload))
			}
			if info.ETag == "" {
				t.Fatalf("expected checksum etag")
			}

			got, body, err := store.Get(ctx, "runs/r1/comparison.csv")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(body) != string(payload) {
				t.Fatalf("payload mismatch")
			}
			if got.ContentType != "text/csv" {
				t.Fatalf("content type = %q", got.ContentType)
			}

			if _, err := store.Put(ctx, "runs/r1/comparison.csv", payload, "text/csv"); err == nil {
				t.Fatalf("expected duplicate key to fail")
			}

			if _, err := store.Put(ctx, "runs/r1/cells.csv", payload, "text/csv"); err != nil {
				t.Fatalf("put second: %v", err)
			}
			infos, err := store.List(ctx, "runs/r1/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 {
				t.Fatalf("expected 2 artifacts, got %d", len(infos))
			}
			if infos[0].Key != "runs/r1/cells.csv" {
				t.Fatalf("expected sorted keys, got %v", infos)
			}
		})
	}
}

func TestPresignUnsupportedOnLocalDrivers(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.PresignURL(ctx, "runs/r1/cells.csv", 0); !errors.Is(err, artifact.ErrUnsupported) {
				t.Fatalf("expected ErrUnsupported, got %v", err)
			}
		})
	}
}

func TestFilesystemRejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store, err := fsdriver.New(t.TempDir())
	if err != nil {
		t.Fatalf("open fs store: %v", err)
	}
	for _, key := range []string{"", "../escape", "/absolute"} {
		if _, err := store.Put(ctx, key, []byte("x"), ""); err == nil {
			t.Errorf("expected key %q to be rejected", key)
		}
	}
}
