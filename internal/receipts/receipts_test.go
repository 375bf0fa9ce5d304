package receipts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirStoreRoundTrip(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := store.Write(ctx, "receipt.jpg", []byte("blob")); err != nil {
		t.Fatal(err)
	}
	got, err := store.Read(ctx, "receipt.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "blob" {
		t.Errorf("got %s", got)
	}

	if err := store.Delete(ctx, "receipt.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Read(ctx, "receipt.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDirStoreDeleteMissing(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// Deleting a blob that never existed is not an error.
	if err := store.Delete(context.Background(), "nope.jpg"); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestDirStoreStripsPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := store.Write(ctx, "../escape.jpg", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.jpg")); err != nil {
		t.Errorf("blob not written inside the store directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.jpg")); err == nil {
		t.Error("blob escaped the store directory")
	}
}

func TestMimeType(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"a.pdf", "application/pdf"},
		{"a.png", "image/png"},
		{"a.gif", "image/gif"},
		{"a.webp", "image/webp"},
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"noext", "image/jpeg"},
	}
	for _, tc := range cases {
		if got := MimeType(tc.name); got != tc.want {
			t.Errorf("MimeType(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
