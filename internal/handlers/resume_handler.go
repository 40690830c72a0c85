package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/storage"
)

// ResumeHandler serves resumes held by a MemoryBlobStore so that its public
// URLs resolve during local runs.
type ResumeHandler struct {
	Blobs *storage.MemoryBlobStore
}

// GetResume is GET /resumes/*key
func (h *ResumeHandler) GetResume(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	body, contentType, ok := h.Blobs.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
		return
	}
	c.Data(http.StatusOK, contentType, body)
}
