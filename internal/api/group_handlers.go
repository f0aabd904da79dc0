package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/snaptagapp/snaptag-server/internal/domain"
)

func (s *Server) registerGroupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGroups",
		Method:      http.MethodGet,
		Path:        "/api/v1/groups",
		Summary:     "List tag groups",
		Description: "Returns the tag catalog, optionally filtered by tag name substring",
		Tags:        []string{"Catalog"},
	}, s.handleListGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "createGroup",
		Method:      http.MethodPost,
		Path:        "/api/v1/groups",
		Summary:     "Create tag group",
		Description: "Creates a new tag group",
		Tags:        []string{"Catalog"},
	}, s.handleCreateGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGroup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/groups/{id}",
		Summary:     "Delete tag group",
		Description: "Deletes a group and all its tags, dropping them from open selections",
		Tags:        []string{"Catalog"},
	}, s.handleDeleteGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "addTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/groups/{id}/tags",
		Summary:     "Add tag",
		Description: "Adds a tag to a group",
		Tags:        []string{"Catalog"},
	}, s.handleAddTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/groups/{id}/tags/{tagId}",
		Summary:     "Delete tag",
		Description: "Removes one tag from a group, dropping it from open selections",
		Tags:        []string{"Catalog"},
	}, s.handleDeleteTag)
}

// === DTOs ===

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string `json:"id" doc:"Tag ID"`
	Name      string `json:"name" doc:"Tag name"`
	GroupID   string `json:"group_id,omitempty" doc:"Owning group ID"`
	IsTimeTag bool   `json:"is_time_tag,omitempty" doc:"True for the exclusive time-axis tag"`
}

// GroupResponse contains tag group data in API responses.
type GroupResponse struct {
	ID   string        `json:"id" doc:"Group ID"`
	Name string        `json:"name" doc:"Group name"`
	Tags []TagResponse `json:"tags" doc:"Tags owned by the group"`
}

// ListGroupsInput contains parameters for listing groups.
type ListGroupsInput struct {
	Query string `query:"query" doc:"Case-insensitive tag name substring filter"`
}

// ListGroupsResponse contains the (possibly filtered) catalog.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups" doc:"Tag groups"`
}

// ListGroupsOutput wraps the list groups response for Huma.
type ListGroupsOutput struct {
	Body ListGroupsResponse
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50" doc:"Group name"`
}

// CreateGroupInput wraps the create group request for Huma.
type CreateGroupInput struct {
	Body CreateGroupRequest
}

// GroupOutput wraps a single group response for Huma.
type GroupOutput struct {
	Body GroupResponse
}

// DeleteGroupInput contains parameters for deleting a group.
type DeleteGroupInput struct {
	ID string `path:"id" doc:"Group ID"`
}

// DeleteGroupOutput reports what a delete removed.
type DeleteGroupOutput struct {
	Body GroupResponse
}

// AddTagRequest is the request body for adding a tag.
type AddTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50" doc:"Tag name"`
}

// AddTagInput wraps the add tag request for Huma.
type AddTagInput struct {
	ID   string `path:"id" doc:"Group ID"`
	Body AddTagRequest
}

// TagOutput wraps a single tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	ID    string `path:"id" doc:"Group ID"`
	TagID string `path:"tagId" doc:"Tag ID"`
}

// DeleteTagOutput is the empty success body for tag deletion.
type DeleteTagOutput struct {
	Body struct {
		Deleted bool `json:"deleted" doc:"Always true on success"`
	}
}

// === Handlers ===

func (s *Server) handleListGroups(ctx context.Context, input *ListGroupsInput) (*ListGroupsOutput, error) {
	groups, err := s.services.Catalog.FilterGroups(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	resp := make([]GroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = mapGroupResponse(g)
	}

	return &ListGroupsOutput{Body: ListGroupsResponse{Groups: resp}}, nil
}

func (s *Server) handleCreateGroup(ctx context.Context, input *CreateGroupInput) (*GroupOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	group, err := s.services.Catalog.AddGroup(ctx, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &GroupOutput{Body: mapGroupResponse(*group)}, nil
}

func (s *Server) handleDeleteGroup(ctx context.Context, input *DeleteGroupInput) (*DeleteGroupOutput, error) {
	removed, err := s.services.Catalog.DeleteGroup(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	// Open selections must not keep tags from a deleted group. Saved
	// images keep their copies.
	s.services.Selections.DropGroup(removed.ID)

	return &DeleteGroupOutput{Body: mapGroupResponse(*removed)}, nil
}

func (s *Server) handleAddTag(ctx context.Context, input *AddTagInput) (*TagOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	tag, err := s.services.Catalog.AddTag(ctx, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: mapTagResponse(*tag)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*DeleteTagOutput, error) {
	if err := s.services.Catalog.DeleteTag(ctx, input.ID, input.TagID); err != nil {
		return nil, err
	}

	s.services.Selections.DropTag(input.TagID)

	out := &DeleteTagOutput{}
	out.Body.Deleted = true
	return out, nil
}

// === Mappers ===

func mapTagResponse(t domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		GroupID:   t.GroupID,
		IsTimeTag: t.IsTimeTag,
	}
}

func mapGroupResponse(g domain.TagGroup) GroupResponse {
	tags := make([]TagResponse, len(g.Tags))
	for i, t := range g.Tags {
		tags[i] = mapTagResponse(t)
	}
	return GroupResponse{
		ID:   g.ID,
		Name: g.Name,
		Tags: tags,
	}
}
