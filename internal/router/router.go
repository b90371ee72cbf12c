package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskify/backend/api/handler"
)

type Handlers struct {
	Pages  *apiHandler.PagesHandler
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// Middleware bundles the two session guard flavours: browser routes redirect
// to the login page, API routes answer with a 401 envelope.
type Middleware struct {
	BrowserGuard func(fasthttp.RequestHandler) fasthttp.RequestHandler
	APIGuard     func(fasthttp.RequestHandler) fasthttp.RequestHandler
}

func New(handlers Handlers, mw Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Public pages
	r.GET("/", handlers.Pages.Landing)
	r.GET("/register", handlers.Pages.Register)
	r.GET("/login", handlers.Pages.Login)
	r.GET("/forgot-password", handlers.Pages.ForgotPassword)
	r.GET("/verify-otp", handlers.Pages.VerifyOTP)

	// Auth flow
	r.POST("/register", handlers.Auth.Register)
	r.POST("/login", handlers.Auth.Login)
	r.GET("/logout", handlers.Auth.Logout)
	r.POST("/forgot-password", handlers.Auth.ForgotPassword)
	r.POST("/verify-otp", handlers.Auth.VerifyOTP)

	// Protected routes
	r.GET("/dashboard", mw.BrowserGuard(handlers.Auth.Dashboard))

	r.GET("/tasks", mw.APIGuard(handlers.Task.List))
	r.POST("/tasks", mw.APIGuard(handlers.Task.Create))
	r.GET("/tasks/{id}", mw.APIGuard(handlers.Task.Get))
	r.PUT("/tasks/{id}", mw.APIGuard(handlers.Task.Update))
	r.DELETE("/tasks/{id}", mw.APIGuard(handlers.Task.Delete))

	r.NotFound = handlers.Pages.NotFound

	return r
}
