package observability

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

// Recover returns an Echo middleware that converts panics into 500
// responses, logs the stack server-side and reports the panic to Sentry
// with request context attached. The client only ever sees a generic
// error body.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[PANIC] %s %s: %v\n%s",
						c.Request().Method, c.Request().URL.Path, r, debug.Stack())
					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("method", c.Request().Method)
						scope.SetTag("path", c.Request().URL.Path)
						sentry.CaptureException(fmt.Errorf("panic in request: %v", r))
					})
					err = c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
				}
			}()
			return next(c)
		}
	}
}
