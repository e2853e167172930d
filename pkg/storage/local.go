package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Local writes artifacts below a directory served by the API under a public URL prefix.
type Local struct {
	dir       string
	publicURL string
	logger    zerolog.Logger
}

// NewLocal prepares dir and returns a filesystem backed artifact store.
func NewLocal(dir, publicURL string, logger zerolog.Logger) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage directory must be provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare storage directory: %w", err)
	}

	return &Local{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Dir is the root directory holding stored artifacts.
func (s *Local) Dir() string {
	return s.dir
}

// Put stores the artifact at key and returns its public reference.
func (s *Local) Put(ctx context.Context, key string, reader io.Reader) (string, error) {
	clean := filepath.ToSlash(filepath.Clean("/" + key))
	if clean == "/" {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}

	target := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact: %w", err)
	}

	written, err := io.Copy(file, readerWithContext(ctx, reader))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	s.logger.Debug().Str("path", target).Int64("bytes", written).Msg("artifact stored")

	return s.publicURL + clean, nil
}

type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func readerWithContext(ctx context.Context, reader io.Reader) io.Reader {
	return &contextReader{ctx: ctx, reader: reader}
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}
