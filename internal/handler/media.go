package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"scribbles/internal/httputil"
	"scribbles/internal/model"
	"scribbles/internal/service"
)

// MediaHandler accepts image uploads for cover images and inline content.
type MediaHandler struct {
	media *service.MediaService
	log   *zap.Logger
}

func NewMediaHandler(media *service.MediaService, log *zap.Logger) *MediaHandler {
	return &MediaHandler{
		media: media,
		log:   log.Named("MediaHandler"),
	}
}

// UploadImage handles POST /media/images with a multipart "image" field.
func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	maxFormSize := h.media.MaxSize() + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteServiceError(w, h.log, model.ErrFileTooLarge)
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	result, err := h.media.IngestImage(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}
