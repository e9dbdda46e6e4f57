package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pdf-highlighter/internal/domain"

	"github.com/google/uuid"
)

// UploadService stores documents chosen from the local machine so the
// renderer can open them by path.
type UploadService struct {
	dir      string
	maxBytes int64
	logger   domain.Logger
}

func NewUploadService(dir string, maxBytes int64, logger domain.Logger) *UploadService {
	return &UploadService{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Save copies the document into the upload directory and returns its
// absolute path.
func (s *UploadService) Save(ctx context.Context, filename string, file io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Strip any path components from the client-supplied name.
	name := strings.TrimSpace(filepath.Base(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "document.pdf"
	}
	if strings.ToLower(filepath.Ext(name)) != ".pdf" {
		return "", &domain.ValidationError{Field: "file", Message: "only PDF documents are supported"}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(s.dir, uuid.NewString()+"-"+name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve upload path: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	written, err := io.Copy(out, io.LimitReader(file, s.maxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = fmt.Errorf("document exceeds %d bytes: %w", s.maxBytes, domain.ErrInvalidFile)
	}
	if err == nil && written == 0 {
		err = fmt.Errorf("document is empty: %w", domain.ErrInvalidFile)
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, domain.ErrInvalidFile) {
			return "", err
		}
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	s.logger.Info("Stored uploaded document", "file", name, "path", path, "bytes", written)
	return path, nil
}
