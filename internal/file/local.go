package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrInvalidName = errors.New("invalid file name")

type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Driver() string {
	return DriverLocal
}

func (s *LocalStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	target, err := s.Path(name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	return name, nil
}

func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	target, err := s.Path(name)
	if err != nil {
		return err
	}

	err = os.Remove(target)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}

	return nil
}

// Path resolves a stored name inside the upload directory. Names that would
// escape it are rejected.
func (s *LocalStorage) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidName
	}

	return filepath.Join(s.dir, name), nil
}
