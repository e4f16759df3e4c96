package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-bookstore/internal/config"
	"go-bookstore/internal/handler"
	"go-bookstore/internal/middleware"
	"go-bookstore/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	bookHandler *handler.BookHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthHandler.Health)

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/", healthHandler.Index)

		api.Post("/register", authHandler.Register)
		api.Post("/login", authHandler.Login)
		api.Post("/forgot_password", authHandler.ForgotPassword)
		api.Post("/reset_password", authHandler.ResetPassword)
		api.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		api.With(authMiddleware.RequireAuth).Post("/change_password", authHandler.ChangePassword)

		api.Route("/books", func(books chi.Router) {
			books.Use(authMiddleware.RequireAuth)

			books.Get("/", bookHandler.List)
			books.Get("/{id}", bookHandler.Get)
			books.With(authMiddleware.RequireRoles(model.RoleAdmin)).Post("/", bookHandler.Create)
			books.With(authMiddleware.RequireRoles(model.RoleAdmin)).Put("/{id}", bookHandler.Update)
			books.With(authMiddleware.RequireRoles(model.RoleAdmin)).Delete("/{id}", bookHandler.Delete)
		})
	})

	return r
}
