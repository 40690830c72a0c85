package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/analytics"
	"github.com/justsurfingit/job-application-tracker/internal/apperr"
	"github.com/justsurfingit/job-application-tracker/internal/dtos"
	"github.com/justsurfingit/job-application-tracker/internal/models"
	"github.com/justsurfingit/job-application-tracker/internal/services"
)

// ApplicationHandler exposes the application service and the analytics
// aggregator over HTTP. Dependencies are injected by main.
type ApplicationHandler struct {
	Applications   *services.ApplicationService
	Analytics      *analytics.Aggregator
	LLMService     *services.LLMService
	MaxResumeBytes int64
}

func NewApplicationHandler(apps *services.ApplicationService, agg *analytics.Aggregator, llm *services.LLMService, maxResumeBytes int64) *ApplicationHandler {
	return &ApplicationHandler{
		Applications:   apps,
		Analytics:      agg,
		LLMService:     llm,
		MaxResumeBytes: maxResumeBytes,
	}
}

// RegisterRoutes mounts every route on api. limit guards the mutating routes.
func RegisterRoutes(api *gin.RouterGroup, h *ApplicationHandler, limit gin.HandlerFunc) {
	api.GET("/health", HealthCheck)
	api.GET("/statuses", ListStatuses)

	api.GET("/applications", h.ListApplications)
	api.POST("/applications", limit, h.CreateApplication)
	api.POST("/applications/extract", limit, h.ExtractApplication)
	api.PATCH("/applications/:id/status", limit, h.UpdateStatus)
	api.DELETE("/applications/:id", limit, h.DeleteApplication)

	api.GET("/analytics", h.Dashboard)
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func ListStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses": models.StatusNames(),
		"default":  models.DefaultStatus,
	})
}

// ListApplications is GET /applications?q=
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	apps, err := h.Applications.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	query := c.Query("q")
	apps = services.Search(apps, query)
	c.JSON(http.StatusOK, dtos.ApplicationListResponse{
		Query:        query,
		Total:        len(apps),
		Applications: apps,
	})
}

// CreateApplication is POST /applications. Multipart requests may carry a "resume" PDF.
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req dtos.ApplicationCreationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid request: " + err.Error(), Code: string(apperr.CodeValidation)})
		return
	}

	resume, err := h.readResume(c)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.Applications.Submit(c.Request.Context(), services.NewApplication{
		CompanyName: req.CompanyName,
		Role:        req.Role,
		Status:      req.Status,
	}, resume)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("✅ Application saved: %s / %s", created.CompanyName, created.Role)
	c.JSON(http.StatusCreated, created)
}

// ExtractApplication is POST /applications/extract. It only suggests values;
// nothing is stored.
func (h *ApplicationHandler) ExtractApplication(c *gin.Context) {
	var req dtos.ApplicationExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid JSON format: " + err.Error(), Code: string(apperr.CodeValidation)})
		return
	}
	draft, err := h.LLMService.ExtractApplication(c.Request.Context(), req.RawHTML)
	if errors.Is(err, services.ErrLLMDisabled) {
		c.JSON(http.StatusNotImplemented, dtos.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		log.Printf("❌ Extraction failed: %v", err)
		c.JSON(http.StatusBadGateway, dtos.ErrorResponse{Error: "AI extraction failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": draft})
}

// UpdateStatus is PATCH /applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dtos.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid JSON format: " + err.Error(), Code: string(apperr.CodeValidation)})
		return
	}
	updated, err := h.Applications.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteApplication is DELETE /applications/:id
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	result, err := h.Applications.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dtos.DeleteResponse{Deleted: result.Application}
	if result.ResumeCleanupErr != nil {
		resp.Warning = "Could not delete resume file: " + result.ResumeCleanupErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard is GET /analytics?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *ApplicationHandler) Dashboard(c *gin.Context) {
	var q dtos.DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid query: " + err.Error(), Code: string(apperr.CodeValidation)})
		return
	}
	r, err := analytics.ParseDateRange(q.Start, q.End, h.Analytics.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid date range: " + err.Error(), Code: string(apperr.CodeValidation)})
		return
	}

	apps, err := h.Applications.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Analytics.Dashboard(apps, r))
}

func (h *ApplicationHandler) readResume(c *gin.Context) (*services.ResumeFile, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}
	fh, err := c.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.NewValidationError("could not read resume: "+err.Error(), map[string]string{"resume": "unreadable"})
	}
	if fh.Size > h.MaxResumeBytes {
		return nil, apperr.NewValidationError(
			fmt.Sprintf("resume exceeds %d bytes", h.MaxResumeBytes),
			map[string]string{"resume": "too large"})
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.NewValidationError("could not read resume: "+err.Error(), map[string]string{"resume": "unreadable"})
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, h.MaxResumeBytes+1))
	if err != nil {
		return nil, apperr.NewValidationError("could not read resume: "+err.Error(), map[string]string{"resume": "unreadable"})
	}
	if int64(len(body)) > h.MaxResumeBytes {
		return nil, apperr.NewValidationError(
			fmt.Sprintf("resume exceeds %d bytes", h.MaxResumeBytes),
			map[string]string{"resume": "too large"})
	}
	return &services.ResumeFile{Name: fh.Filename, Body: body}, nil
}

func respondError(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		log.Printf("❌ Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch e.Code {
	case apperr.CodeValidation:
		status = http.StatusBadRequest
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeUploadFailed:
		status = http.StatusBadGateway
	case apperr.CodeStoreUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s: %v", e.Code, err)
	}
	c.JSON(status, dtos.ErrorResponse{Error: e.Message, Code: string(e.Code), Fields: e.Fields})
}
