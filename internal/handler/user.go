package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scribbles/internal/httputil"
	"scribbles/internal/model"
	"scribbles/internal/service"
)

// UserHandler serves public account pages.
type UserHandler struct {
	accounts *service.AccountService
	posts    *service.PostService
	log      *zap.Logger
}

func NewUserHandler(accounts *service.AccountService, posts *service.PostService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		posts:    posts,
		log:      log.Named("UserHandler"),
	}
}

// GetProfile handles GET /users/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Profile(chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// GetUserPosts handles GET /users/{username}/posts
// Unknown usernames yield an empty list.
func (h *UserHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	posts := h.posts.GetPostsByAuthor(chi.URLParam(r, "username"))
	httputil.WriteJSON(w, http.StatusOK, model.PostListResponse{
		Posts: service.NewPostViews(posts, viewer(h.accounts)),
	})
}

// viewer is the username likes are reported for, empty when logged out.
func viewer(sessions service.SessionProvider) string {
	if session, ok := sessions.CurrentSession(); ok {
		return session.Username
	}
	return ""
}
