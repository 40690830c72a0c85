package dtos

import "github.com/justsurfingit/job-application-tracker/internal/models"

// ApplicationCreationRequest is accepted as JSON or as multipart form fields
// alongside an optional "resume" file.
type ApplicationCreationRequest struct {
	CompanyName string `json:"company_name" form:"company_name" binding:"required"`
	Role        string `json:"role" form:"role" binding:"required"`

	// Optional Fields
	Status string `json:"status" form:"status"` // Defaults to "Applied" if empty
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

type ApplicationExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
}

type DashboardQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

type ApplicationListResponse struct {
	Query        string               `json:"query,omitempty"`
	Total        int                  `json:"total"`
	Applications []models.Application `json:"applications"`
}

type DeleteResponse struct {
	Deleted models.Application `json:"deleted"`
	Warning string             `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}
