package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local stores images on disk and returns file URLs. It stands in for the
// real media backend, which is outside this core; only the Save contract
// matters to the booking workflow.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (s *Local) Save(_ context.Context, name string, data io.Reader) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s", uuid.New(), filepath.Base(name)))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", err
	}
	return "file://" + path, nil
}
