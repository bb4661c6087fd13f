package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndOpenRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.Write(context.Background(), "contents/c1/tracks/t1.mp3", []byte("audio"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "contents/c1/tracks/t1.mp3" {
		t.Fatalf("key = %q", key)
	}

	r, err := store.Open(key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "audio" {
		t.Fatalf("data = %q", data)
	}
}

func TestWriteFromStreams(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.WriteFrom(context.Background(), "mixes/m1.mp3", strings.NewReader("streamed"))
	if err != nil {
		t.Fatalf("WriteFrom: %v", err)
	}
	path, err := store.AbsPath(key)
	if err != nil {
		t.Fatalf("AbsPath: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "streamed" {
		t.Fatalf("data = %q", data)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"", "  ", "../etc/passwd", "a/../../b"} {
		if _, err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Write(%q) accepted invalid key", key)
		}
	}
}

func TestAbsPathStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	path, err := store.AbsPath("videos/v1.mp4")
	if err != nil {
		t.Fatalf("AbsPath: %v", err)
	}
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		t.Fatalf("path %q escapes root %q", path, root)
	}
}
