package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists audio and video artifacts onto the local filesystem.
// Keys are slash-separated relative paths, cleaned to prevent directory
// traversal; the absolute path of a stored artifact is exposed for handing
// to external transcoding binaries.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if !filepath.IsAbs(basePath) {
		abs, err := filepath.Abs(basePath)
		if err != nil {
			return nil, fmt.Errorf("storage: resolve base path: %w", err)
		}
		basePath = abs
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns
// the canonicalized storage key.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	cleanKey, fullPath, err := s.resolve(ctx, key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// WriteFrom streams r into the given key, for payloads too large to buffer.
func (s *FileStore) WriteFrom(ctx context.Context, key string, r io.Reader) (string, error) {
	cleanKey, fullPath, err := s.resolve(ctx, key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("storage: stream file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("storage: close file: %w", err)
	}
	return cleanKey, nil
}

// AbsPath maps a storage key onto its absolute filesystem path.
func (s *FileStore) AbsPath(key string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// Open returns a reader over a stored artifact.
func (s *FileStore) Open(key string) (io.ReadCloser, error) {
	fullPath, err := s.AbsPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: %q: %w", key, os.ErrNotExist)
		}
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

func (s *FileStore) resolve(ctx context.Context, key string) (string, string, error) {
	if s == nil {
		return "", "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	return cleanKey, filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
