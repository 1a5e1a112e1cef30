package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scribbles/internal/httputil"
	"scribbles/internal/model"
	"scribbles/internal/service"
)

type CommentHandler struct {
	posts *service.PostService
	log   *zap.Logger
}

func NewCommentHandler(posts *service.PostService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		posts: posts,
		log:   log.Named("CommentHandler"),
	}
}

// List handles GET /posts/{id}/comments
// Comments are returned in the order they were added.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPostByID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": post.Comments,
	})
}

// Create handles POST /posts/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCommentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	text := strings.TrimSpace(req.Text)
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		httputil.WriteServiceError(w, h.log, model.ErrCommentTooLong)
		return
	}

	comment, err := h.posts.AddComment(r.Context(), chi.URLParam(r, "id"), text)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}
