// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict.
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates the request was structurally invalid.
var ErrValidation = errors.New("validation failed")

// ErrUnauthorized indicates a missing, expired, or invalid session.
var ErrUnauthorized = errors.New("unauthorized")
