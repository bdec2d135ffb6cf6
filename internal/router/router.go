// Package router wires every HTTP route of the dashboard API to its
// handler and access policy. All policy lives here: handlers assume the
// middleware chain already authenticated and authorized the caller,
// except for batch-level ownership which needs the cached document.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/motor-health-dashboard/internal/config"
	"github.com/iliyamo/motor-health-dashboard/internal/handler"
	"github.com/iliyamo/motor-health-dashboard/internal/middleware"
	"github.com/iliyamo/motor-health-dashboard/internal/model"
	"github.com/iliyamo/motor-health-dashboard/internal/observability"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Cfg   config.Config
	Redis *redis.Client

	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Batch     *handler.BatchHandler
	Window    *handler.WindowHandler
	CacheAdm  *handler.CacheAdminHandler
	Proxy     *handler.ProxyHandler
	Report    *handler.ReportHandler
}

// Register sets up global middleware and all route groups.
func Register(e *echo.Echo, d Deps) {
	e.Use(observability.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.Cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/ping", handler.Ping)

	jwtAuth := middleware.JWTAuth(d.Cfg.AccessSecret)

	// Auth endpoints share a fixed-window rate limit keyed by client IP.
	authGroup := e.Group("/auth", middleware.RateLimit(
		d.Redis, d.Cfg.AuthRateLimit, time.Duration(d.Cfg.AuthRateWindowSec)*time.Second))
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/refresh", d.Auth.Refresh)
	authGroup.POST("/logout", d.Auth.Logout, jwtAuth)
	authGroup.GET("/verify", d.Auth.Verify, jwtAuth)

	// Dashboard routes enforce the same owner-or-admin policy as reports.
	dash := e.Group("/dashboard", jwtAuth,
		middleware.RequireRole(model.RoleEngineer, model.RoleAdmin),
		middleware.RequireOwnerOrAdmin("user_id"))
	dash.GET("/:user_id", d.Dashboard.GetDashboard)
	dash.GET("/:user_id/motor-health", d.Dashboard.GetMotorHealth)

	// Cached batch data, readable by any authenticated user; per-batch
	// ownership is not enforced here, matching the dashboard UI contract.
	api := e.Group("/api", jwtAuth)
	api.GET("/batch/:batch_id/overview", d.Batch.GetBatchOverview)
	api.GET("/batch/:batch_id/window/:window_id/autoencoder", d.Window.GetAutoencoderWindow)
	api.GET("/batch/:batch_id/window/:window_id/attention", d.Window.GetAttentionWeights)
	api.GET("/batch/:batch_id/window/:window_id/lstm", d.Window.GetLSTMPrediction)
	api.GET("/batch/:batch_id/anomalies/timeline", d.Window.GetTimeline)

	// Operator endpoints.
	cache := e.Group("/api/cache", jwtAuth, middleware.RequireRole(model.RoleAdmin))
	cache.GET("/stats", d.CacheAdm.GetStats)
	cache.POST("/refresh/:batch_id", d.CacheAdm.Refresh)

	// Motor and pipeline control proxies.
	api.GET("/motor/status", d.Proxy.MotorStatus)
	api.POST("/motor/start", d.Proxy.MotorStart)
	api.POST("/motor/stop", d.Proxy.MotorStop)
	api.GET("/pipeline/status/:user_id", d.Proxy.PipelineStatus)
	api.POST("/pipeline/start/:user_id", d.Proxy.PipelineStart)
	api.POST("/pipeline/stop/:user_id", d.Proxy.PipelineStop)

	// Reports. Batch and window reports check ownership in the handler
	// because the owner is only known from the cached document.
	reports := e.Group("/report", jwtAuth)
	reports.GET("/dashboard/:user_id", d.Report.GetDashboardReport, middleware.RequireOwnerOrAdmin("user_id"))
	reports.GET("/batch/:batch_id", d.Report.GetBatchReport)
	reports.GET("/batch/:batch_id/window/:window_id", d.Report.GetWindowReport)
}
