package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportImages",
		Method:      http.MethodPost,
		Path:        "/api/v1/export",
		Summary:     "Export images",
		Description: "Copies the whole image collection into the photo library album",
		Tags:        []string{"Export"},
	}, s.handleExport)
}

// ExportInput is the (empty) request for an export run.
type ExportInput struct{}

// ExportResponse reports how many images made it into the album.
type ExportResponse struct {
	Exported int `json:"exported" doc:"Images successfully staged and created as assets"`
	Total    int `json:"total" doc:"Images in the collection when the run started"`
}

// ExportOutput wraps the export response for Huma.
type ExportOutput struct {
	Body ExportResponse
}

func (s *Server) handleExport(ctx context.Context, _ *ExportInput) (*ExportOutput, error) {
	items, err := s.services.Images.List(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.services.Exporter.Export(ctx, items)
	if err != nil {
		return nil, err
	}

	return &ExportOutput{Body: ExportResponse{
		Exported: summary.Exported,
		Total:    summary.Total,
	}}, nil
}
