package api

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// Upload is an optional file attached to a multipart create call
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// OpenUpload opens a file from disk as an Upload. The caller closes the returned file.
func OpenUpload(path string) (*Upload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apierrors.FileNotFoundError(path)
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return &Upload{Filename: filepath.Base(path), Reader: f}, f, nil
}

// multipartFields builds the JSON blob part under field and the optional image part under "image"
func multipartFields(field string, payload interface{}, image *Upload) ([]*resty.MultipartField, error) {
	blob, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", field, err)
	}

	fields := []*resty.MultipartField{{
		Param:       field,
		ContentType: "application/json",
		Reader:      bytes.NewReader(blob),
	}}

	if image != nil && image.Reader != nil {
		contentType := image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		fields = append(fields, &resty.MultipartField{
			Param:       "image",
			FileName:    image.Filename,
			ContentType: contentType,
			Reader:      image.Reader,
		})
	}
	return fields, nil
}
