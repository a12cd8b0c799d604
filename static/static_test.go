package static_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/turbohttp/static"
)

func setupRoot(t *testing.T) (string, map[string]string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":      "<html><body>Home</body></html>",
		"css/style.css":   "body { margin: 0; }",
		"data.json":       `{"message": "Hello"}`,
		"data.json.gz":    "GZIP_COMPRESSED_DATA",
		"data.json.br":    "BROTLI_COMPRESSED_DATA",
		"docs/index.html": "<p>docs</p>",
		"range.txt":       "0123456789",
	}
	for p, content := range files {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root, files
}

func serve(h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler(t *testing.T) {
	root, files := setupRoot(t)
	cfg := static.DefaultConfig()
	cfg.Root = root
	h := static.Handler(cfg)

	t.Run("ServeFile", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/index.html", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, files["index.html"], rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.NotEmpty(t, rec.Header().Get("ETag"))
		assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
		assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	})

	t.Run("ServeNestedFile", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/css/style.css", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, files["css/style.css"], rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	})

	t.Run("DirectoryIndex", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/docs/", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, files["docs/index.html"], rec.Body.String())
	})

	t.Run("ETag", func(t *testing.T) {
		etag := serve(h, http.MethodGet, "/static/data.json", nil).Header().Get("ETag")
		require.NotEmpty(t, etag)

		rec := serve(h, http.MethodGet, "/static/data.json", map[string]string{"If-None-Match": etag})
		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("IfModifiedSince", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/data.json", map[string]string{
			"If-Modified-Since": time.Now().Add(time.Hour).UTC().Format(http.TimeFormat),
		})
		assert.Equal(t, http.StatusNotModified, rec.Code)
	})

	t.Run("PreCompressedGzip", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/data.json", map[string]string{"Accept-Encoding": "gzip"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.Equal(t, "GZIP_COMPRESSED_DATA", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	})

	t.Run("PreCompressedBrotli", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/data.json", map[string]string{"Accept-Encoding": "br, gzip"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
		assert.Equal(t, "BROTLI_COMPRESSED_DATA", rec.Body.String())
	})

	t.Run("Range", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/range.txt", map[string]string{"Range": "bytes=2-5"})
		assert.Equal(t, http.StatusPartialContent, rec.Code)
		assert.Equal(t, "bytes 2-5/10", rec.Header().Get("Content-Range"))
		assert.Equal(t, "2345", rec.Body.String())
	})

	t.Run("NotFound", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/missing.txt", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", rec.Body.String())
	})

	t.Run("Traversal", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/static/../../etc/passwd", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("OutsidePrefix", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/staticky/index.html", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		rec := serve(h, http.MethodPost, "/static/index.html", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandler_NoCache(t *testing.T) {
	root, _ := setupRoot(t)
	h := static.Handler(static.Config{Prefix: "/assets/", Root: root})

	rec := serve(h, http.MethodGet, "/assets/data.json", map[string]string{"Accept-Encoding": "gzip"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Empty(t, rec.Header().Get("ETag"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}
