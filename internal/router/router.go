package router

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"casedesk/internal/auth"
	"casedesk/internal/config"
	"casedesk/internal/handler"
	"casedesk/internal/middleware"
	"casedesk/internal/policy"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	caseHandler *handler.CaseHandler,
	adminHandler *handler.AdminHandler,
	userHandler *handler.UserHandler,
	exportHandler *handler.ExportHandler,
) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", healthHandler.Live)
	e.GET("/readyz", healthHandler.Ready)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/admin/create-admin", userHandler.CreateAdmin)

	// Secured routes (require a valid, unrevoked token)
	secured := api.Group("", middleware.JWT(jwtService), middleware.Identity(tokenStore))

	cases := secured.Group("/case", middleware.IPAllowlist(cfg.AllowedIPs, log))
	cases.POST("/create", caseHandler.Create, middleware.Require(policy.OpCreateCase))
	cases.GET("/mine", caseHandler.ListMine, middleware.Require(policy.OpListOwnCases))
	cases.GET("/tech", caseHandler.ListForTech, middleware.Require(policy.OpListTechCases))
	cases.PUT("/tech/fix/:id", caseHandler.UpdateResolution, middleware.Require(policy.OpUpdateResolution))

	admin := secured.Group("/admin")
	admin.GET("/all-cases", adminHandler.AllCases, middleware.Require(policy.OpListAllCases))
	admin.GET("/case-logs/:caseId", adminHandler.CaseLogs, middleware.Require(policy.OpListCaseLogs))
	admin.POST("/create-user", userHandler.CreateUser, middleware.Require(policy.OpCreateUser))
	admin.GET("/export-excel", exportHandler.ExportCases, middleware.Require(policy.OpExportCases))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
