package commands

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/yshengliao/turbohttp/app"
	"github.com/yshengliao/turbohttp/config"
	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/middleware"
	"github.com/yshengliao/turbohttp/pkg/errors"
	"github.com/yshengliao/turbohttp/pkg/validation"
	"github.com/yshengliao/turbohttp/response"
)

var errBookNotFound = stderrors.New("book not found")

// Book is the demo resource served under /books
type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title" validate:"required,max=200"`
	Author string `json:"author" validate:"required"`
}

type bookStore struct {
	mu     sync.RWMutex
	nextID int
	books  map[int]Book
}

func newBookStore() *bookStore {
	return &bookStore{nextID: 1, books: make(map[int]Book)}
}

func (s *bookStore) add(b Book) Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID
	s.nextID++
	s.books[b.ID] = b
	return b
}

func (s *bookStore) get(id int) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return Book{}, fmt.Errorf("book %d: %w", id, errBookNotFound)
	}
	return b, nil
}

func (s *bookStore) list() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// booksResource is built fresh for every request to /books
type booksResource struct {
	store *bookStore
}

func (r *booksResource) Methods() types.Methods {
	return types.Methods{
		"get":  r.list,
		"post": r.create,
	}
}

func (r *booksResource) list(_ *types.Request, resp *response.Response, _ types.Params) error {
	response.Success(resp, http.StatusOK, r.store.list())
	return nil
}

func (r *booksResource) create(req *types.Request, resp *response.Response, _ types.Params) error {
	var b Book
	if err := validation.DecodeAndValidate(req, &b); err != nil {
		var ve *validation.ValidationError
		if stderrors.As(err, &ve) {
			return errors.New(errors.CodeValidationFailed, ve.Error())
		}
		return errors.New(errors.CodeInvalidJSON, err.Error())
	}
	resp.SetStatus(http.StatusCreated)
	resp.SetJSON(r.store.add(b))
	return nil
}

// buildApp assembles the demo application from cfg
func buildApp(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*app.App, error) {
	a, err := app.NewApp(app.WithLogger(logger), app.WithConfig(cfg))
	if err != nil {
		return nil, err
	}

	registry := errors.NewRegistry()
	registry.Register(errBookNotFound, errors.CodeResourceNotFound, http.StatusNotFound, "Book not found")
	a.SetExceptionHandler(errors.JSONExceptionHook(&errors.HookConfig{
		Logger:                         logger,
		HideInternalServerErrorDetails: cfg.Logger.Level != "debug",
		Registry:                       registry,
	}))

	store := newBookStore()

	routes := []struct {
		pattern string
		methods []string
		handler types.Handler
	}{
		{"/", []string{http.MethodGet}, types.Func(func(_ *types.Request, resp *response.Response, _ types.Params) error {
			resp.SetText("Hello from the HOME page")
			return nil
		})},
		{"/about", []string{http.MethodGet}, types.Func(func(_ *types.Request, resp *response.Response, _ types.Params) error {
			resp.SetText("Hello from the ABOUT page")
			return nil
		})},
		{"/hello/{name}", []string{http.MethodGet}, types.Func(func(_ *types.Request, resp *response.Response, params types.Params) error {
			resp.SetText(fmt.Sprintf("Hello, %s!", params.Get("name")))
			return nil
		})},
		{"/books", nil, types.Class(func() types.Resource { return &booksResource{store: store} })},
		{"/books/{id}", []string{http.MethodGet}, types.Func(func(_ *types.Request, resp *response.Response, params types.Params) error {
			id, err := strconv.Atoi(params.Get("id"))
			if err != nil {
				return errors.New(errors.CodeInvalidInput, "id must be a number")
			}
			b, err := store.get(id)
			if err != nil {
				return err
			}
			resp.SetJSON(b)
			return nil
		})},
		{"/template", []string{http.MethodGet}, types.Func(func(_ *types.Request, resp *response.Response, _ types.Params) error {
			html, err := a.Render("index.html", map[string]any{"title": "TurboHTTP", "name": "TurboHTTP"})
			if err != nil {
				return err
			}
			resp.SetHTML(html)
			return nil
		})},
	}
	for _, r := range routes {
		if err := a.AddRoute(r.pattern, r.handler, r.methods...); err != nil {
			return nil, err
		}
	}

	if cfg.RateLimit.Enabled {
		a.Use(middleware.RateLimitByIP(cfg.RateLimit.Rate, cfg.RateLimit.Burst))
	}
	if cfg.Server.CORS {
		a.Use(middleware.CORS())
	}
	a.Use(middleware.Tracing())
	a.Use(middleware.Metrics(middleware.WithRegistry(reg)))
	a.Use(middleware.Logger(logger))
	a.Use(middleware.RequestID())

	return a, nil
}
