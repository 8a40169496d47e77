package handler

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/metrics"
	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/ratelimit"
)

// RouterDeps bundles everything the HTTP surface needs. All fields are
// required except Metrics, which may be nil in tests.
type RouterDeps struct {
	Auth          *AuthHandler
	Loads         *LoadHandler
	Drivers       *DriverHandler
	Shippers      *ShipperHandler
	Facilities    *FacilityHandler
	Documents     *DocumentHandler
	Notifications *NotificationHandler
	Invoices      *InvoiceHandler
	Admin         *AdminHandler
	Cron          *CronHandler
	Health        *HealthHandler

	SessionAuth    gin.HandlerFunc
	Limiter        *ratelimit.Limiter
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
	AllowedOrigins []string
	CronSecret     string
}

// NewRouter assembles the full route tree. Middleware order matters: rate
// limiting runs before body validation, which runs before session auth.
func NewRouter(deps RouterDeps) *gin.Engine {
	registerValidatorTagNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(MetricsMiddleware(deps.Metrics))
	}
	r.Use(CORSMiddleware(deps.AllowedOrigins))

	r.GET("/healthz", deps.Health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth", RateLimitMiddleware(deps.Limiter, ratelimit.ClassAuth))
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/forgot-password", deps.Auth.ForgotPassword)
		auth.POST("/reset-password", deps.Auth.ResetPassword)
		auth.POST("/logout", deps.Auth.Logout)
		auth.GET("/me", deps.SessionAuth, deps.Auth.Me)
	}

	cron := v1.Group("/cron", RateLimitMiddleware(deps.Limiter, ratelimit.ClassAPI), CronAuthMiddleware(deps.CronSecret))
	{
		cron.POST("/registration-expiry", deps.Cron.RegistrationScan)
	}

	api := v1.Group("", RateLimitMiddleware(deps.Limiter, ratelimit.ClassAPI), deps.SessionAuth)

	loads := api.Group("/loads")
	{
		loads.POST("", RequireShipper(), deps.Loads.Create)
		loads.GET("", deps.Loads.List)
		loads.GET("/available", RequireDriver(), deps.Loads.ListAvailable)
		loads.GET("/:id", deps.Loads.Get)
		loads.POST("/:id/accept", RequireDriver(), deps.Loads.Accept)
		loads.PATCH("/:id/status", RequireDriver(), deps.Loads.UpdateStatus)
		loads.POST("/:id/cancel", RequireShipper(), deps.Loads.Cancel)
	}

	drivers := api.Group("/drivers")
	{
		drivers.GET("", RequireUserTypes(model.UserTypeDriver, model.UserTypeAdmin), deps.Drivers.List)
		drivers.GET("/:id", RequireUserTypes(model.UserTypeDriver, model.UserTypeAdmin), deps.Drivers.Get)
		drivers.PATCH("/:id", RequireUserTypes(model.UserTypeDriver, model.UserTypeAdmin), deps.Drivers.Update)
		drivers.GET("/:id/ratings", deps.Drivers.ListRatings)
		drivers.POST("/:id/ratings", RequireShipper(), deps.Drivers.Rate)
		drivers.GET("/:id/documents", RequireUserTypes(model.UserTypeDriver, model.UserTypeAdmin), deps.Drivers.ListDocuments)
		drivers.POST("/:id/documents", RequireUserTypes(model.UserTypeDriver, model.UserTypeAdmin), deps.Drivers.CreateDocument)
	}

	shippers := api.Group("/shippers")
	{
		shippers.GET("/:id", RequireUserTypes(model.UserTypeShipper, model.UserTypeAdmin), deps.Shippers.Get)
		shippers.PATCH("/:id", RequireUserTypes(model.UserTypeShipper, model.UserTypeAdmin), deps.Shippers.Update)
	}

	facilities := api.Group("/facilities")
	{
		facilities.GET("", deps.Facilities.List)
		facilities.GET("/:id", deps.Facilities.Get)
		facilities.POST("", RequireUserTypes(model.UserTypeShipper, model.UserTypeAdmin), deps.Facilities.Create)
		facilities.PATCH("/:id", RequireAdmin(), deps.Facilities.Update)
		facilities.DELETE("/:id", RequireAdmin(), deps.Facilities.Delete)
	}

	api.DELETE("/documents/:id", RequireUserTypes(model.UserTypeDriver, model.UserTypeAdmin), deps.Documents.Delete)

	notifications := api.Group("/notifications")
	{
		notifications.GET("", deps.Notifications.List)
		notifications.PATCH("/:id/read", deps.Notifications.MarkRead)
	}

	invoices := api.Group("/invoices")
	{
		invoices.POST("/generate", RequireAdmin(), deps.Invoices.Generate)
		invoices.GET("", RequireUserTypes(model.UserTypeShipper, model.UserTypeAdmin), deps.Invoices.List)
		invoices.GET("/:id", RequireUserTypes(model.UserTypeShipper, model.UserTypeAdmin), deps.Invoices.Get)
		invoices.PATCH("/:id/status", RequireAdmin(), deps.Invoices.UpdateStatus)
	}

	admin := api.Group("/admin", RequireAdmin())
	{
		admin.GET("/stats", deps.Admin.Stats)
		admin.DELETE("/users/:userType/:id/login-attempts", deps.Admin.ClearLoginAttempts)
	}

	return r
}

// registerValidatorTagNames makes validation errors report json field names
// instead of Go struct field names.
func registerValidatorTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}
