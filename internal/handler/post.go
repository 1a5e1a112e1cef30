package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scribbles/internal/httputil"
	"scribbles/internal/model"
	"scribbles/internal/richtext"
	"scribbles/internal/service"
	"scribbles/internal/transport/http/middleware"
)

type PostHandler struct {
	posts    *service.PostService
	accounts *service.AccountService
	log      *zap.Logger
}

func NewPostHandler(posts *service.PostService, accounts *service.AccountService, log *zap.Logger) *PostHandler {
	return &PostHandler{
		posts:    posts,
		accounts: accounts,
		log:      log.Named("PostHandler"),
	}
}

// List handles GET /posts
// Returns every post, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, model.PostListResponse{
		Posts: service.NewPostViews(h.posts.ListPosts(), viewer(h.accounts)),
	})
}

// Home handles GET /posts/home
func (h *PostHandler) Home(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.posts.Home(viewer(h.accounts)))
}

// GetByID handles GET /posts/{id}
// Returns a single post with its comments.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPostByID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewPostView(*post, viewer(h.accounts)))
}

// GetDocument handles GET /posts/{id}/document
// Returns the post content as an editable document tree.
func (h *PostHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPostByID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	doc, err := richtext.Parse(post.Content)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}
	if doc.Blocks == nil {
		doc.Blocks = []richtext.Block{}
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

// Create handles POST /posts
// Content is accepted as markup or as a document tree and stored as
// sanitized markup.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		httputil.WriteServiceError(w, h.log, model.ErrTitleRequired)
		return
	}
	if utf8.RuneCountInString(title) > model.MaxPostTitleLength {
		httputil.WriteServiceError(w, h.log, model.ErrTitleTooLong)
		return
	}

	content, ok := h.content(w, req)
	if !ok {
		return
	}

	if req.CoverImage != "" && !richtext.IsSafeImageURL(req.CoverImage) {
		httputil.WriteBadRequest(w, "Unsupported cover image URL")
		return
	}

	post, err := h.posts.AddPost(r.Context(), title, content, req.CoverImage)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, service.NewPostView(*post, post.Author.Username))
}

// content resolves the request body's content to markup, writing a 400 when
// it is missing or malformed.
func (h *PostHandler) content(w http.ResponseWriter, req model.CreatePostRequest) (string, bool) {
	var markup string
	if len(req.Document) > 0 && string(req.Document) != "null" {
		var doc richtext.Document
		if err := json.Unmarshal(req.Document, &doc); err != nil {
			httputil.WriteBadRequest(w, "Invalid document")
			return "", false
		}
		if err := doc.Validate(); err != nil {
			httputil.WriteBadRequest(w, "Invalid document: "+err.Error())
			return "", false
		}
		markup = richtext.Render(&doc)
	} else {
		normalized, err := richtext.Normalize(req.Content)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid content")
			return "", false
		}
		markup = normalized
	}

	if strings.TrimSpace(markup) == "" {
		httputil.WriteServiceError(w, h.log, model.ErrContentRequired)
		return "", false
	}
	return markup, true
}

// ToggleLike handles POST /posts/{id}/like
// Likes the post, or unlikes it if the session already liked it.
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.ToggleLike(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	username, _ := middleware.GetUsernameFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, model.ToggleLikeResponse{
		PostID:    post.ID,
		Liked:     post.LikedBy(username),
		LikeCount: len(post.Likes),
	})
}
