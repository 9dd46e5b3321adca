package filesystem_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/court/internal/adapters/filesystem"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

func TestDocumentStore_Store(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	store := filesystem.NewDocumentStore(dir)
	ctx := context.Background()

	ref, err := store.Store(ctx, secondary.Document{
		Name:        "sak_3_20260101_120000.html",
		ContentType: "text/html",
		Data:        []byte("<html>case 3</html>"),
		CaseID:      3,
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !strings.HasPrefix(ref, "file://") {
		t.Errorf("expected file:// reference, got %s", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sak_3_20260101_120000.html"))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "<html>case 3</html>" {
		t.Errorf("unexpected content %q", data)
	}

	loaded, err := store.Load(ref)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(data) {
		t.Errorf("Load returned %q", loaded)
	}
}

func TestDocumentStore_Store_ExistingName(t *testing.T) {
	store := filesystem.NewDocumentStore(t.TempDir())
	ctx := context.Background()
	doc := secondary.Document{Name: "sak_1.html", Data: []byte("first")}

	if _, err := store.Store(ctx, doc); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	doc.Data = []byte("second")
	if _, err := store.Store(ctx, doc); !errors.Is(err, courterr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDocumentStore_Store_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store := filesystem.NewDocumentStore(dir)

	if _, err := store.Store(context.Background(), secondary.Document{Name: "../../escape.html", Data: []byte("x")}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.html")); err != nil {
		t.Errorf("expected file inside archive dir: %v", err)
	}
}
