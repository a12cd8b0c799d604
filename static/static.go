// Package static serves files from a directory for every request under a
// URL prefix. The application delegates such requests here before routing.
package static

import (
	"crypto/md5"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Config defines static file server configuration
type Config struct {
	// Prefix is the URL prefix stripped before looking up files
	Prefix string

	// Root directory to serve files from
	Root string

	// Index file names
	Index []string

	// EnableCache enables cache headers
	EnableCache bool

	// CacheMaxAge sets max-age for cache control (in seconds)
	CacheMaxAge int

	// EnableETag enables ETag generation
	EnableETag bool

	// EnableGzip enables pre-compressed .gz file serving
	EnableGzip bool

	// EnableBrotli enables pre-compressed .br file serving
	EnableBrotli bool
}

// DefaultConfig returns default static file configuration
func DefaultConfig() Config {
	return Config{
		Prefix:       "/static",
		Root:         "static",
		Index:        []string{"index.html"},
		EnableCache:  true,
		CacheMaxAge:  3600, // 1 hour
		EnableETag:   true,
		EnableGzip:   true,
		EnableBrotli: true,
	}
}

// Handler returns an http.Handler serving config.Root under config.Prefix.
// Missing files answer 404 "Not Found" in plain text.
func Handler(config Config) http.Handler {
	if len(config.Index) == 0 {
		config.Index = DefaultConfig().Index
	}
	config.Prefix = strings.TrimSuffix(config.Prefix, "/")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = textErrorHandler
	e.Use(Middleware(config))
	e.Any("/*", func(echo.Context) error {
		return echo.ErrNotFound
	})
	return e
}

// Middleware returns the echo middleware behind Handler
func Middleware(config Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method != http.MethodGet && method != http.MethodHead {
				return echo.ErrMethodNotAllowed
			}

			p, ok := strip(config.Prefix, c.Request().URL.Path)
			if !ok {
				return next(c)
			}

			acceptEncoding := c.Request().Header.Get("Accept-Encoding")
			if config.EnableBrotli && strings.Contains(acceptEncoding, "br") {
				if err := serveFile(c, config, filepath.Join(config.Root, p+".br"), p, "br"); err == nil {
					return nil
				}
			}
			if config.EnableGzip && strings.Contains(acceptEncoding, "gzip") {
				if err := serveFile(c, config, filepath.Join(config.Root, p+".gz"), p, "gzip"); err == nil {
					return nil
				}
			}

			file := filepath.Join(config.Root, filepath.FromSlash(p))
			fi, err := os.Stat(file)
			if err != nil {
				if os.IsNotExist(err) {
					return next(c)
				}
				return err
			}

			if fi.IsDir() {
				for _, index := range config.Index {
					indexPath := filepath.Join(file, index)
					if ifi, err := os.Stat(indexPath); err == nil && !ifi.IsDir() {
						return serveFile(c, config, indexPath, path.Join(p, index), "")
					}
				}
				return next(c)
			}

			return serveFile(c, config, file, p, "")
		}
	}
}

// strip removes prefix from urlPath and cleans the rest so it cannot climb
// out of the root.
func strip(prefix, urlPath string) (string, bool) {
	if prefix != "" {
		if urlPath != prefix && !strings.HasPrefix(urlPath, prefix+"/") {
			return "", false
		}
		urlPath = strings.TrimPrefix(urlPath, prefix)
	}
	return path.Clean("/" + urlPath), true
}

func serveFile(c echo.Context, config Config, file, name, encoding string) error {
	fi, err := os.Stat(file)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return echo.ErrNotFound
	}

	h := c.Response().Header()
	if encoding != "" {
		h.Set("Content-Encoding", encoding)
		h.Set("Vary", "Accept-Encoding")
		if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
			h.Set("Content-Type", ct)
		}
	}

	if config.EnableETag {
		etag := generateETag(file, fi)
		h.Set("ETag", etag)
		if match := c.Request().Header.Get("If-None-Match"); match != "" && match == etag {
			return c.NoContent(http.StatusNotModified)
		}
	}

	if config.EnableCache {
		h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", config.CacheMaxAge))
	} else {
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
	}

	h.Set("Last-Modified", fi.ModTime().UTC().Format(http.TimeFormat))
	if config.EnableCache {
		if t, err := time.Parse(http.TimeFormat, c.Request().Header.Get("If-Modified-Since")); err == nil {
			if fi.ModTime().Unix() <= t.Unix() {
				return c.NoContent(http.StatusNotModified)
			}
		}
	}

	// c.File goes through http.ServeContent, which also answers Range requests
	return c.File(file)
}

func generateETag(file string, fi os.FileInfo) string {
	h := md5.New()
	h.Write([]byte(file))
	h.Write([]byte(strconv.FormatInt(fi.Size(), 36)))
	h.Write([]byte(strconv.FormatInt(fi.ModTime().Unix(), 36)))
	return fmt.Sprintf(`"%x"`, h.Sum(nil))
}

func textErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
	}
	_ = c.String(code, http.StatusText(code))
}
