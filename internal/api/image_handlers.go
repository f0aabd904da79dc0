package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/snaptagapp/snaptag-server/internal/domain"
	"github.com/snaptagapp/snaptag-server/internal/http/response"
)

// ImageResponse contains captured photo data in API responses.
type ImageResponse struct {
	ID        string        `json:"id"`
	URI       string        `json:"uri"`
	Tags      []TagResponse `json:"tags"`
	Width     int           `json:"width,omitempty"`
	Height    int           `json:"height,omitempty"`
	BlurHash  string        `json:"blur_hash,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

func mapImageResponse(img domain.ImageItem) ImageResponse {
	tags := make([]TagResponse, len(img.Tags))
	for i, t := range img.Tags {
		tags[i] = mapTagResponse(t)
	}
	return ImageResponse{
		ID:        img.ID,
		URI:       img.URI,
		Tags:      tags,
		Width:     img.Width,
		Height:    img.Height,
		BlurHash:  img.BlurHash,
		CreatedAt: img.CreatedAt,
	}
}

// handleListImages returns the image collection in capture order.
func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Images.List(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	resp := make([]ImageResponse, len(items))
	for i, item := range items {
		resp[i] = mapImageResponse(item)
	}

	response.Success(w, map[string]any{"images": resp, "count": len(resp)}, s.logger)
}

// CaptureRequest is the request body for registering a captured photo.
type CaptureRequest struct {
	URI string `json:"uri" validate:"required"`
}

// handleCapture registers a captured photo with the collection.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	item, err := s.services.Images.Capture(r.Context(), req.URI)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, mapImageResponse(*item), s.logger)
}

// handleDeleteImage removes one photo from the collection.
func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Image ID is required", s.logger)
		return
	}
	if !confirmed(r) {
		response.BadRequest(w, "Deletion requires confirm=true", s.logger)
		return
	}

	if err := s.services.Images.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.services.Selections.Discard(id)

	response.NoContent(w)
}

// handleClearImages empties the whole collection.
func (s *Server) handleClearImages(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		response.BadRequest(w, "Clearing the collection requires confirm=true", s.logger)
		return
	}

	if err := s.services.Images.ClearAll(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// confirmed reports whether the caller acknowledged a destructive action.
func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}
