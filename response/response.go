// Package response provides the mutable response builder handed to handlers
// and middleware for the lifetime of a single request.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Content types produced by Resolve.
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
	ContentTypeText = "text/plain"
)

// Response accumulates handler output and resolves it into a single body and
// content type when the transport asks for it.
//
// At most one of JSON, HTML and Text is expected to be set. If several are,
// Resolve picks by the fixed precedence JSON > HTML > Text > raw body.
type Response struct {
	statusCode int
	header     http.Header

	json    any
	hasJSON bool
	html    *string
	text    *string

	body        []byte
	contentType string

	// cached result of Resolve, dropped by every setter
	resolved     bool
	resolvedBody []byte
	resolvedType string
}

// New returns an empty response whose status code is not yet set.
func New() *Response {
	return &Response{header: make(http.Header)}
}

// StatusCode returns the status code, 0 when nothing set it yet.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// SetStatus sets the HTTP status code.
func (r *Response) SetStatus(code int) {
	r.statusCode = code
}

// Header returns the headers sent along with the resolved body.
func (r *Response) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// SetJSON stores structured data to be encoded as JSON.
func (r *Response) SetJSON(v any) {
	r.json = v
	r.hasJSON = true
	r.resolved = false
}

// JSON returns the structured data and whether it was set.
func (r *Response) JSON() (any, bool) {
	return r.json, r.hasJSON
}

// SetHTML stores an HTML document.
func (r *Response) SetHTML(html string) {
	r.html = &html
	r.resolved = false
}

// HTML returns the HTML text and whether it was set.
func (r *Response) HTML() (string, bool) {
	if r.html == nil {
		return "", false
	}
	return *r.html, true
}

// SetText stores a plain text body.
func (r *Response) SetText(text string) {
	r.text = &text
	r.resolved = false
}

// Text returns the plain text and whether it was set.
func (r *Response) Text() (string, bool) {
	if r.text == nil {
		return "", false
	}
	return *r.text, true
}

// SetBody stores an already encoded body. It is only used when none of
// JSON, HTML or Text is set.
func (r *Response) SetBody(body []byte) {
	r.body = body
	r.resolved = false
}

// SetContentType sets the content type that accompanies a raw body.
func (r *Response) SetContentType(contentType string) {
	r.contentType = contentType
	r.resolved = false
}

// Resolve returns the final body and content type. Calling it repeatedly
// yields the same bytes without re-encoding.
func (r *Response) Resolve() ([]byte, string, error) {
	if r.resolved {
		return r.resolvedBody, r.resolvedType, nil
	}

	var (
		body        []byte
		contentType string
	)
	switch {
	case r.hasJSON:
		encoded, err := json.Marshal(r.json)
		if err != nil {
			return nil, "", err
		}
		body, contentType = encoded, ContentTypeJSON
	case r.html != nil:
		body, contentType = []byte(*r.html), ContentTypeHTML
	case r.text != nil:
		body, contentType = []byte(*r.text), ContentTypeText
	default:
		body, contentType = r.body, r.contentType
	}

	r.resolvedBody, r.resolvedType, r.resolved = body, contentType, true
	return body, contentType, nil
}

// Send resolves the response and writes status, headers and body to w.
// A status code that was never set is written as 200.
func (r *Response) Send(w http.ResponseWriter) error {
	body, contentType, err := r.Resolve()
	if err != nil {
		return err
	}

	h := w.Header()
	for k, v := range r.header {
		h[k] = v
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))

	status := r.statusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
