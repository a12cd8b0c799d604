package validation_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/pkg/validation"
)

func TestNewValidator(t *testing.T) {
	v := validation.NewValidator()
	assert.NotNil(t, v)
}

func TestValidation(t *testing.T) {
	v := validation.NewValidator()

	type Book struct {
		Title string `validate:"required,min=3,max=50"`
		Pages int    `validate:"min=1"`
	}

	t.Run("ValidStruct", func(t *testing.T) {
		assert.NoError(t, v.Validate(Book{Title: "Dune", Pages: 412}))
	})

	t.Run("InvalidStruct", func(t *testing.T) {
		err := v.Validate(Book{Title: "Go"})
		require.Error(t, err)

		ve, ok := err.(*validation.ValidationError)
		require.True(t, ok)
		assert.Len(t, ve.Errors, 2)
		assert.Contains(t, ve.Errors["title"], "at least 3")
		assert.Contains(t, ve.Errors["pages"], "at least 1")
		assert.Equal(t, "pages: pages must be at least 1; title: title must be at least 3", err.Error())
	})
}

func TestCustomValidators(t *testing.T) {
	v := validation.NewValidator()

	type Routing struct {
		Method string `validate:"httpmethod"`
		Prefix string `validate:"urlprefix"`
	}

	tests := []struct {
		name    string
		input   Routing
		wantErr []string
	}{
		{"valid", Routing{Method: "get", Prefix: "/static"}, nil},
		{"empty prefix", Routing{Method: "POST"}, nil},
		{"bad method", Routing{Method: "FETCH", Prefix: "/s"}, []string{"method"}},
		{"bad prefix", Routing{Method: "GET", Prefix: "static"}, []string{"prefix"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			ve := err.(*validation.ValidationError)
			for _, field := range tt.wantErr {
				assert.Contains(t, ve.Errors, field)
			}
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	type Book struct {
		Title string `json:"title" validate:"required"`
	}

	t.Run("valid", func(t *testing.T) {
		raw := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"Dune"}`))
		var b Book
		require.NoError(t, validation.DecodeAndValidate(types.NewRequest(raw), &b))
		assert.Equal(t, "Dune", b.Title)
	})

	t.Run("malformed", func(t *testing.T) {
		raw := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":`))
		var b Book
		err := validation.DecodeAndValidate(types.NewRequest(raw), &b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid request format")
	})

	t.Run("missing field", func(t *testing.T) {
		raw := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{}`))
		var b Book
		err := validation.DecodeAndValidate(types.NewRequest(raw), &b)
		var ve *validation.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Errors, "title")
	})
}
