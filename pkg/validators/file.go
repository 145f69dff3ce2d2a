// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"spacetwo/asset-api/internal/errs"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errs.New(errs.ErrValidation, "file too large")
	ErrFileNameTooLong = errs.New(errs.ErrValidation, "file name is too long")
	ErrFileEmpty       = errs.New(errs.ErrValidation, "file is empty")
	ErrNoFile          = errs.New(errs.ErrValidation, "no file provided")
	ErrInvalidID       = errs.New(errs.ErrValidation, "invalid file ID format")
)

// FileNameValidator checks the name a client wants to store a file under.
func FileNameValidator(name string, maxLength int) error {
	if name == "" {
		return ErrNoFile
	}

	if len(name) > maxLength {
		return ErrFileNameTooLong
	}

	return nil
}

// FileSizeValidator checks a size announced by a client.
func FileSizeValidator(size, maxSize int64) error {
	if size < 0 {
		return errs.New(errs.ErrValidation, "invalid file size")
	}

	if size > maxSize {
		return ErrFileTooLarge
	}

	return nil
}

// IDValidator checks that id is a UUID.
func IDValidator(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}

	return nil
}

// FileValidator checks a multipart upload and sniffs its real content type
// from the bytes. The returned file is rewound and must be closed by the
// caller.
func FileValidator(fh *multipart.FileHeader, maxSize int64, maxNameLength int) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	if err := FileNameValidator(fh.Filename, maxNameLength); err != nil {
		return http.StatusBadRequest, nil, "", err
	}

	// Header size is easy to spoof, but it's a fast reject for legit clients
	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	if fh.Size == 0 {
		return http.StatusBadRequest, nil, "", ErrFileEmpty
	}

	// And now do the checks on the actual file to avoid
	// malicious clients
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	_, err = f.Seek(maxSize, io.SeekStart)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	buf := make([]byte, 1)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if n > 0 {
		f.Close()
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	return 0, f, contentType(mime, fh.Header.Get("Content-Type")), nil
}

// contentType prefers the sniffed type. Sniffing falls back to
// application/octet-stream or text/plain for formats it does not know, in
// which case the declared type is kept.
func contentType(sniffed *mimetype.MIME, declared string) string {
	if declared != "" && (sniffed.Is("application/octet-stream") || sniffed.Is("text/plain")) {
		return declared
	}

	return sniffed.String()
}
