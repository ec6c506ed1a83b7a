package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
)

// Multipart part names the backend binds with @RequestPart
const (
	partValue  = "value"
	partFile   = "file"
	partImages = "images"
)

// File is a binary attachment for a multipart request
type File struct {
	Name    string
	Content io.Reader
}

// OpenFile opens path for upload. The caller closes the returned file.
func OpenFile(path string) (*File, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &File{Name: filepath.Base(path), Content: f}, f, nil
}

// buildFormData encodes dto as the JSON `value` part followed by one part per
// file under field. Nil files are skipped.
func buildFormData(dto any, field string, files ...*File) (*bytes.Buffer, string, error) {
	value, err := json.Marshal(dto)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField(partValue, string(value)); err != nil {
		return nil, "", fmt.Errorf("failed to write %s part: %w", partValue, err)
	}

	for _, f := range files {
		if f == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
		h.Set("Content-Type", contentTypeFor(f.Name))

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create %s part: %w", field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write %s part: %w", field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (c *Client) doMultipart(ctx context.Context, method, path, field string, dto, out any, files ...*File) error {
	body, contentType, err := buildFormData(dto, field, files...)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, nil, body, contentType, out)
}
