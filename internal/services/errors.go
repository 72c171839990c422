package services

import "errors"

// ErrInvalidRequest marks requests rejected before any data is loaded
var ErrInvalidRequest = errors.New("invalid render request")
