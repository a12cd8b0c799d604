// Package view renders html/template files from a directory. Parsed
// templates are cached until the directory changes.
package view

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultExt is appended to template names given without an extension.
const DefaultExt = ".html"

// Engine renders named templates from a directory
type Engine struct {
	dir    string
	funcs  template.FuncMap
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used by Watch
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFuncs registers template functions
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for k, v := range funcs {
			e.funcs[k] = v
		}
	}
}

// New creates an engine rooted at dir
func New(dir string, opts ...Option) *Engine {
	e := &Engine{
		dir:    dir,
		funcs:  template.FuncMap{},
		logger: zap.NewNop(),
		cache:  make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the template directory
func (e *Engine) Dir() string {
	return e.dir
}

// Render executes the named template with data and returns the output
func (e *Engine) Render(name string, data map[string]any) (string, error) {
	tpl, err := e.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("view: execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// Invalidate drops every cached template
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.cache = make(map[string]*template.Template)
	e.mu.Unlock()
}

func (e *Engine) template(name string) (*template.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("view: template name is empty")
	}
	if strings.Contains(name, "..") {
		return nil, fmt.Errorf("view: invalid template name %q", name)
	}
	if filepath.Ext(name) == "" {
		name += DefaultExt
	}

	e.mu.RLock()
	tpl := e.cache[name]
	e.mu.RUnlock()
	if tpl != nil {
		return tpl, nil
	}

	parsed, err := template.New(filepath.Base(name)).Funcs(e.funcs).ParseFiles(filepath.Join(e.dir, name))
	if err != nil {
		return nil, fmt.Errorf("view: parse %s: %w", name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing := e.cache[name]; existing != nil {
		return existing, nil
	}
	e.cache[name] = parsed
	return parsed, nil
}

// Watch invalidates the cache whenever a file under the template directory
// changes. The watcher is registered before Watch returns and runs until ctx
// is done.
func (e *Engine) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := addWatchDir(watcher, e.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", e.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				e.logger.Debug("Template changed", zap.String("file", event.Name))
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
				e.Invalidate()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.logger.Warn("Template watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}

func addWatchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
