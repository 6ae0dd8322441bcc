package dto

import "github.com/vqdung71104/student-management-sub000/internal/models"

// ExportRequest asks for a chosen combination to be rendered as a file.
type ExportRequest struct {
	SectionIDs []string            `json:"section_ids" validate:"required,min=1,max=15"`
	Format     models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Title      string              `json:"title" validate:"max=120"`
}

// ExportJobResponse acknowledges job creation.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes export job progress to clients.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
