package listing

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	MaxFileSize  int64 = 10 << 20
	MaxFiles           = 20
	MaxTotalSize int64 = 100 << 20
)

var (
	ErrNotImage       = errors.New("only image files are allowed")
	ErrFileTooLarge   = errors.New("file too large, maximum size is 10MB per image")
	ErrTooManyFiles   = errors.New("too many files, maximum 20 images allowed")
	ErrUploadTooLarge = errors.New("total upload size too large, maximum 100MB total")
)

// Upload is one image received with a listing form
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// CheckUploads enforces the per file, file count and total size limits
func CheckUploads(uploads []Upload) error {
	if len(uploads) > MaxFiles {
		return ErrTooManyFiles
	}
	var total int64
	for _, u := range uploads {
		if !strings.HasPrefix(strings.ToLower(u.ContentType), "image/") {
			return errors.Wrap(ErrNotImage, u.Filename)
		}
		if u.Size > MaxFileSize {
			return errors.Wrap(ErrFileTooLarge, u.Filename)
		}
		total += u.Size
	}
	if total > MaxTotalSize {
		return ErrUploadTooLarge
	}
	return nil
}

// IsLimitError reports errors that should be answered with 413
func IsLimitError(err error) bool {
	return errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrTooManyFiles) || errors.Is(err, ErrUploadTooLarge)
}
