// Package observability wires optional Sentry error reporting. When no
// DSN is configured every function here is a no-op, so handlers can call
// CaptureError unconditionally.
package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures the global Sentry client. An empty dsn disables
// reporting without error.
func Init(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

// Flush drains buffered events on shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// CaptureError reports an unexpected server-side error. Client errors
// (400/401/403/404) should never be routed here.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
