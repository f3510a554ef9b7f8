package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// UploadPDF sends the file at path as the multipart field "file" and returns the backend's status message.
func (c *Client) UploadPDF(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", errors.Wrap(err, "creating form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", errors.Wrap(err, "reading upload")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "closing multipart body")
	}

	response := &statusMessage{}
	req := request{
		method:        http.MethodPost,
		path:          "/upload-pdf",
		body:          body,
		contentType:   writer.FormDataContentType(),
		authenticated: true,
	}
	if err := c.do(ctx, req, response); err != nil {
		return "", err
	}
	return response.Message, nil
}
