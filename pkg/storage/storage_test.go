package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestStoreSaveOpenDelete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	clientID := uuid.New()
	rel, err := store.Save("documents", clientID, "cedula front.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(rel, clientID.String()) {
		t.Fatalf("expected path scoped to client, got %q", rel)
	}
	if strings.Contains(rel, " ") {
		t.Fatalf("expected sanitized file name, got %q", rel)
	}

	f, err := store.Open(rel)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "pdf-bytes" {
		t.Fatalf("unexpected contents %q", body)
	}

	if err := store.Delete(rel); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(rel); err != nil {
		t.Fatalf("delete of missing file should be nil, got %v", err)
	}
	if _, err := store.Open(rel); err == nil {
		t.Fatalf("expected open after delete to fail")
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Open("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal path to be rejected")
	}
	if err := store.Delete("/abs/path"); err == nil {
		t.Fatalf("expected absolute path to be rejected")
	}
}
