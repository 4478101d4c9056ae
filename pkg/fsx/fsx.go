package fsx

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

// FileReader reads stored files by their slash separated path
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
}

type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	// DeleteFile succeeds when the file is already gone
	DeleteFile(ctx context.Context, path string) error
}

// FileSystem is a flat object store addressed by relative paths
type FileSystem interface {
	FileReader
	FileWriter
	Join(elem ...string) string
}

var ErrRegistry = errx.NewRegistry("FSX")

var (
	CodeFileNotFound = ErrRegistry.Register("FILE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "File not found")
	CodeInvalidPath  = ErrRegistry.Register("INVALID_PATH", errx.TypeValidation, http.StatusBadRequest, "Invalid file path")
)

func ErrFileNotFound(p string) *errx.Error {
	return ErrRegistry.New(CodeFileNotFound).WithDetail("path", p)
}

func ErrInvalidPath(p string) *errx.Error {
	return ErrRegistry.New(CodeInvalidPath).WithDetail("path", p)
}

// Clean turns p into a relative path that cannot climb above the root.
// "../../etc/passwd" becomes "etc/passwd".
func Clean(p string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
	if cleaned == "" {
		return "", ErrInvalidPath(p)
	}
	return cleaned, nil
}
