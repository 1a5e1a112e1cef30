package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"scribbles/internal/handler"
	"scribbles/internal/httputil"
	authmw "scribbles/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	PostHandler     *handler.PostHandler
	CommentHandler  *handler.CommentHandler
	MediaHandler    *handler.MediaHandler
	ActivityHandler *handler.ActivityHandler
	Tokens          authmw.TokenParser
	Sessions        authmw.SessionProvider
	Logger          *zap.Logger
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(authmw.RequestLogger(cfg.Logger.Named("HTTP")))
	r.Use(middleware.Recoverer)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.AuthHandler.Signup)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/logout", cfg.AuthHandler.Logout)
	})
	r.Get("/me", cfg.AuthHandler.Me)

	r.Route("/users/{username}", func(r chi.Router) {
		r.Get("/", cfg.UserHandler.GetProfile)
		r.Get("/posts", cfg.UserHandler.GetUserPosts)
	})

	r.Get("/posts", cfg.PostHandler.List)
	r.Get("/posts/home", cfg.PostHandler.Home)
	r.Get("/posts/{id}", cfg.PostHandler.GetByID)
	r.Get("/posts/{id}/document", cfg.PostHandler.GetDocument)
	r.Get("/posts/{id}/comments", cfg.CommentHandler.List)

	// Protected routes - the token must belong to the active session
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.Tokens, cfg.Sessions))

		r.Post("/posts", cfg.PostHandler.Create)
		r.Post("/posts/{id}/like", cfg.PostHandler.ToggleLike)
		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)

		r.Post("/media/images", cfg.MediaHandler.UploadImage)

		r.Get("/me/activity", cfg.ActivityHandler.Mine)
	})

	return r
}
