package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snaptagapp/snaptag-server/internal/domain"
	"github.com/snaptagapp/snaptag-server/internal/http/response"
)

// SelectionResponse is the current in-progress tag selection for an image.
type SelectionResponse struct {
	ImageID string        `json:"image_id"`
	Tags    []TagResponse `json:"tags"`
}

func mapSelectionResponse(imageID string, tags []domain.Tag) SelectionResponse {
	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = mapTagResponse(t)
	}
	return SelectionResponse{ImageID: imageID, Tags: resp}
}

// handleOpenSelection opens a tag selection seeded from the image's
// saved tags. Opening twice returns the already-open selection.
func (s *Server) handleOpenSelection(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "id")

	sel, err := s.services.Selections.Open(r.Context(), imageID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, mapSelectionResponse(imageID, sel.Tags()), s.logger)
}

// handleGetSelection returns the open selection for an image.
func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "id")

	sel, ok := s.services.Selections.Get(imageID)
	if !ok {
		response.NotFound(w, "No open selection for this image", s.logger)
		return
	}

	response.Success(w, mapSelectionResponse(imageID, sel.Tags()), s.logger)
}

// handleDiscardSelection drops an open selection without saving.
func (s *Server) handleDiscardSelection(w http.ResponseWriter, r *http.Request) {
	s.services.Selections.Discard(chi.URLParam(r, "id"))
	response.NoContent(w)
}

// ToggleTagRequest is the request body for toggling a catalog tag.
type ToggleTagRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Tag     struct {
		ID   string `json:"id" validate:"required"`
		Name string `json:"name" validate:"required"`
	} `json:"tag"`
}

// handleToggleTag adds the tag to the selection, or removes it when
// already selected.
func (s *Server) handleToggleTag(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "id")

	var req ToggleTagRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sel, ok := s.services.Selections.Get(imageID)
	if !ok {
		response.NotFound(w, "No open selection for this image", s.logger)
		return
	}

	selected := sel.Toggle(req.GroupID, domain.Tag{ID: req.Tag.ID, Name: req.Tag.Name})
	s.logger.Debug("tag toggled", "image_id", imageID, "tag_id", req.Tag.ID, "selected", selected)

	response.Success(w, mapSelectionResponse(imageID, sel.Tags()), s.logger)
}

// SetTimeTagRequest is the request body for setting the time tag.
type SetTimeTagRequest struct {
	Text string `json:"text"`
}

// handleSetTimeTag sets or replaces the selection's exclusive time tag.
// Blank text is a no-op, mirroring the blank-input rule on add
// operations.
func (s *Server) handleSetTimeTag(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "id")

	var req SetTimeTagRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	sel, ok := s.services.Selections.Get(imageID)
	if !ok {
		response.NotFound(w, "No open selection for this image", s.logger)
		return
	}

	sel.SetTimeTag(req.Text)

	response.Success(w, mapSelectionResponse(imageID, sel.Tags()), s.logger)
}

// handleRemoveTimeTag removes the time tag from the selection.
func (s *Server) handleRemoveTimeTag(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "id")

	sel, ok := s.services.Selections.Get(imageID)
	if !ok {
		response.NotFound(w, "No open selection for this image", s.logger)
		return
	}

	sel.RemoveTimeTag()

	response.Success(w, mapSelectionResponse(imageID, sel.Tags()), s.logger)
}

// handleClearSelection empties the selection. Requires confirm=true.
func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "id")

	if !confirmed(r) {
		response.BadRequest(w, "Clearing all tags requires confirm=true", s.logger)
		return
	}

	sel, ok := s.services.Selections.Get(imageID)
	if !ok {
		response.NotFound(w, "No open selection for this image", s.logger)
		return
	}

	cleared := sel.Clear()

	resp := mapSelectionResponse(imageID, sel.Tags())
	response.Success(w, map[string]any{"selection": resp, "cleared": cleared}, s.logger)
}

// handleCommitSelection sorts the selection (time tag first, then
// locale order), saves it on the image, and closes the selection.
func (s *Server) handleCommitSelection(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "id")

	tags, err := s.services.Selections.Commit(r.Context(), imageID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, mapSelectionResponse(imageID, tags), s.logger)
}
