package app

import "errors"

// ErrNoRenderer is returned by Render when no renderer is configured.
var ErrNoRenderer = errors.New("no renderer configured")
