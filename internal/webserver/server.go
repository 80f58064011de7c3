package webserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	_ "github.com/exidealers/marketplace/docs"
	"github.com/exidealers/marketplace/internal/app"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

const appContextKey = "appCtx"

type WebServer struct {
	root         *echo.Echo
	api          *echo.Group
	userAuth     []echo.MiddlewareFunc
	adminAuth    []echo.MiddlewareFunc
	optionalAuth echo.MiddlewareFunc
	appCtx       app.AppContext
}

var server *WebServer

// Init builds the global server for the given application context
func Init(appCtx app.AppContext) {
	server = NewWebServer(appCtx)
}

func NewWebServer(appCtx app.AppContext) *WebServer {
	cfg := appCtx.Config()
	s := &WebServer{appCtx: appCtx}
	s.root = echo.New()
	s.root.HideBanner = true
	s.root.Validator = NewValidator()
	s.root.HTTPErrorHandler = s.errorHandler

	s.root.Pre(middleware.RemoveTrailingSlash())
	s.root.Use(middleware.Recover())
	s.root.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.root.Use(accessLog())
	s.root.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	if cfg.Web.BodyLimit != "" {
		s.root.Use(middleware.BodyLimit(cfg.Web.BodyLimit))
	}
	s.root.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appCtx)
			return next(c)
		}
	})

	if cfg.Media.Backend == "" || cfg.Media.Backend == "local" {
		s.root.Static(cfg.Media.URLPrefix, cfg.GetUploadDir())
	}
	if cfg.Web.ClientDir != "" {
		s.root.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  cfg.Web.ClientDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api") || strings.HasPrefix(p, cfg.Media.URLPrefix) ||
					strings.HasPrefix(p, "/swagger") || p == "/health"
			},
		}))
	}

	s.root.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "OK",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	s.root.GET("/swagger/*", echoSwagger.WrapHandler)

	secret := cfg.Auth.JwtSecret
	s.api = s.root.Group("/api")
	s.userAuth = []echo.MiddlewareFunc{RequireUser(secret)}
	s.adminAuth = []echo.MiddlewareFunc{RequireUser(secret), RequireRole(RoleAdmin)}
	s.optionalAuth = OptionalUser(secret)
	return s
}

func (s *WebServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		zap.L().Error("unhandled request error",
			zap.String("namespace", "web"),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}
	_ = c.JSON(code, map[string]interface{}{
		"error":   http.StatusText(code),
		"message": msg,
	})
}

// Handler exposes the root router
func Handler() http.Handler {
	return server.root
}

// GetAppContext returns the application context injected into every request
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(appContextKey).(app.AppContext)
}

// Listen starts the HTTP server and blocks
func Listen() error {
	cfg := server.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.L().Info("web server listening", zap.String("namespace", "web"), zap.String("addr", addr))
	return server.root.Start(addr)
}

// Shutdown closes the listener
func Shutdown() error {
	if server == nil {
		return nil
	}
	return server.root.Close()
}

// OptionalAuth parses the caller's token when one is sent
func OptionalAuth() echo.MiddlewareFunc {
	return server.optionalAuth
}

// AdminAuth is the middleware chain guarding admin routes
func AdminAuth() []echo.MiddlewareFunc {
	return server.adminAuth
}

// Public routes under /api

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// Member routes under /api, a valid user token is required

func UserGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h, server.userAuth...)
}

func UserPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h, server.userAuth...)
}

func UserPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h, server.userAuth...)
}

func UserDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h, server.userAuth...)
}

// Admin routes under /api/admin, the token must carry the admin role

func AdminGET(path string, h echo.HandlerFunc) {
	server.api.GET("/admin"+path, h, server.adminAuth...)
}

func AdminPOST(path string, h echo.HandlerFunc) {
	server.api.POST("/admin"+path, h, server.adminAuth...)
}

func AdminPUT(path string, h echo.HandlerFunc) {
	server.api.PUT("/admin"+path, h, server.adminAuth...)
}

func AdminDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE("/admin"+path, h, server.adminAuth...)
}
