// Package repository defines the persistence layer: user credentials in
// MySQL, cached analysis documents and refresh tokens in Redis. Sentinel
// errors below let handlers map failure scenarios onto HTTP statuses
// without inspecting driver-specific errors.
package repository

import "errors"

// ErrUsernameExists is returned when registration hits the unique
// username constraint. Handlers translate this into HTTP 400.
var ErrUsernameExists = errors.New("username already exists")

// ErrNotFound is returned when a requested document or row does not
// exist (or has already expired out of Redis). Handlers translate this
// into HTTP 404 or trigger a cache refresh, depending on the route.
var ErrNotFound = errors.New("not found")
