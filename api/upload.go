package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadPrefix = "financial_document_"

type storedUpload struct {
	Path string
	Size int64
}

// persistUpload copies src to a fresh file under dir. Path is set as soon as the
// file exists, even when copying fails, so the caller can always clean up.
func persistUpload(dir string, src io.Reader) (storedUpload, error) {
	path := filepath.Join(dir, uploadPrefix+uuid.NewString()+".pdf")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return storedUpload{}, fmt.Errorf("create upload file: %w", err)
	}
	out := storedUpload{Path: path}

	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	out.Size = n
	if copyErr != nil {
		return out, fmt.Errorf("write upload file: %w", copyErr)
	}
	if closeErr != nil {
		return out, fmt.Errorf("close upload file: %w", closeErr)
	}
	return out, nil
}

// removeUpload never fails the request; problems are only logged.
func removeUpload(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("failed to remove upload")
	}
}
