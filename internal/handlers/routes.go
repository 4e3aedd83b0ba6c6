package handlers

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"projectflow/internal/metrics"
	"projectflow/internal/middleware"
	"projectflow/internal/models"
	"projectflow/internal/services"
	"projectflow/pkg/logger"
)

const apiVersion = "v1"

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	DB          Pinger
	JWTSecret   string
	FrontendURL string

	Auth     services.AuthService
	Tenants  services.TenantService
	Users    services.UserService
	Projects services.ProjectService
	Tasks    services.TaskService
}

// NewRouter builds the echo instance with every route mounted.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(d.Metrics)

	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(logger.Middleware(log))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     []string{d.FrontendURL},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	health := NewHealthHandlers(d.DB)
	e.GET("/health", health.HealthCheck)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	authHandlers := NewAuthHandlers(d.Auth)
	tenantHandlers := NewTenantHandlers(d.Tenants)
	userHandlers := NewUserHandlers(d.Users)
	projectHandlers := NewProjectHandlers(d.Projects)
	taskHandlers := NewTaskHandlers(d.Tasks)

	api := e.Group("/api")
	api.Use(middleware.VersionHeader(apiVersion))

	auth := api.Group("/auth")
	auth.POST("/login", authHandlers.Login)
	auth.POST("/register-tenant", authHandlers.RegisterTenant)

	protected := api.Group("")
	protected.Use(middleware.Authenticate(d.JWTSecret)...)

	superAdmin := middleware.RequireRole(models.RoleSuperAdmin)
	tenantAdmin := middleware.RequireRole(models.RoleTenantAdmin)

	protected.GET("/auth/me", authHandlers.Me)
	protected.POST("/auth/logout", authHandlers.Logout)

	protected.GET("/tenants", tenantHandlers.ListTenants, superAdmin)
	protected.GET("/tenants/:id", tenantHandlers.GetTenant)
	protected.PUT("/tenants/:id", tenantHandlers.UpdateTenant)

	protected.POST("/tenants/:id/users", userHandlers.CreateUser, tenantAdmin)
	protected.GET("/tenants/:id/users", userHandlers.ListUsers)
	protected.PUT("/users/:id", userHandlers.UpdateUser)
	protected.DELETE("/users/:id", userHandlers.DeleteUser)

	protected.POST("/projects", projectHandlers.CreateProject)
	protected.GET("/projects", projectHandlers.ListProjects)
	protected.GET("/projects/:id", projectHandlers.GetProject)
	protected.PUT("/projects/:id", projectHandlers.UpdateProject)
	protected.DELETE("/projects/:id", projectHandlers.DeleteProject)

	protected.POST("/projects/:id/tasks", taskHandlers.CreateTask)
	protected.GET("/projects/:id/tasks", taskHandlers.ListTasks)
	protected.PATCH("/tasks/:id/status", taskHandlers.UpdateTaskStatus)
	protected.PUT("/tasks/:id", taskHandlers.UpdateTask)
	protected.DELETE("/tasks/:id", taskHandlers.DeleteTask)

	return e
}
