package server

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// maxUploadSize caps a single uploaded image
const maxUploadSize = 5 << 20

type upload struct {
	contentType string
	data        []byte
}

// uploadStore keeps uploaded images in memory for the life of the process
type uploadStore struct {
	mu    sync.RWMutex
	files map[string]upload
}

func newUploadStore() *uploadStore {
	return &uploadStore{files: make(map[string]upload)}
}

// save stores fh under a fresh name and returns the URL path it is served at
func (u *uploadStore) save(fh *multipart.FileHeader, prefix string) (string, error) {
	if fh.Size > maxUploadSize {
		return "", fmt.Errorf("file %s exceeds %d bytes", fh.Filename, maxUploadSize)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := prefix + strings.ToLower(ulid.Make().String()) + ext

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}

	u.mu.Lock()
	u.files[name] = upload{contentType: contentType, data: data}
	u.mu.Unlock()

	return "/uploads/" + name, nil
}

// delete forgets the upload behind url; unknown urls are ignored
func (u *uploadStore) delete(url string) {
	if url == "" {
		return
	}
	name := url[strings.LastIndex(url, "/")+1:]
	u.mu.Lock()
	delete(u.files, name)
	u.mu.Unlock()
}

func (u *uploadStore) get(name string) (upload, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	f, ok := u.files[name]
	return f, ok
}

func (s *Server) serveUpload(c *gin.Context) {
	f, ok := s.uploads.get(c.Param("name"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	contentType := f.contentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, f.data)
}

// formFiles returns the files uploaded under field, or nil when the request
// carries none
func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

// formFile returns the single file under field, or nil
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	files := formFiles(c, field)
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}
	return files[0]
}
