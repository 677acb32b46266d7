package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps profile pictures on the local filesystem under a
// single uploads directory. Default backend for the demo when MinIO is
// not configured.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, reader)
	return err
}

func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(key)))
}
