package client

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedPart struct {
	name     string
	filename string
	body     string
}

// readParts collects every part of a multipart request in order
func readParts(t *testing.T, r *http.Request) []receivedPart {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	var parts []receivedPart
	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, receivedPart{name: p.FormName(), filename: p.FileName(), body: string(data)})
	}
	return parts
}

func TestCreateBook_SendsValueAndFileParts(t *testing.T) {
	var parts []receivedPart
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/books", r.URL.Path)
		parts = readParts(t, r)
		_, _ = w.Write([]byte(`{"id":1,"name":"Go in Action"}`))
	})

	in := BookInput{Name: "Go in Action", Description: "A practical book", AuthorID: 2, Price: 499, Quantity: 3}
	book, err := c.CreateBook(context.Background(), in, &File{Name: "cover.png", Content: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)

	require.Len(t, parts, 2)
	assert.Equal(t, "value", parts[0].name)
	var sent BookInput
	require.NoError(t, json.Unmarshal([]byte(parts[0].body), &sent))
	assert.Equal(t, in, sent)

	assert.Equal(t, "file", parts[1].name)
	assert.Equal(t, "cover.png", parts[1].filename)
	assert.Equal(t, "png-bytes", parts[1].body)
}

func TestUpdateProfile_WithoutFileSendsOnlyValue(t *testing.T) {
	var parts []receivedPart
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/profile/4", r.URL.Path)
		parts = readParts(t, r)
		_, _ = w.Write([]byte(`{"id":4,"name":"Ada"}`))
	})

	_, err := c.UpdateProfile(context.Background(), 4, User{Name: "Ada"}, nil)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "value", parts[0].name)
}

func TestCreateReturnRequest_SendsImages(t *testing.T) {
	var parts []receivedPart
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		parts = readParts(t, r)
		_, _ = w.Write([]byte(`{"id":8,"status":"PENDING","type":"RETURN","reason":"damaged"}`))
	})

	_, err := c.CreateReturnRequest(context.Background(),
		ReturnRequest{OrderID: 1, BookID: 2, Quantity: 1, Type: ReturnTypeReturn, Reason: "damaged"},
		&File{Name: "a.jpg", Content: strings.NewReader("a")},
		&File{Name: "b.jpg", Content: strings.NewReader("b")},
	)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "value", parts[0].name)
	assert.Equal(t, "images", parts[1].name)
	assert.Equal(t, "images", parts[2].name)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", contentTypeFor("cover.png"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("cover"))
}
