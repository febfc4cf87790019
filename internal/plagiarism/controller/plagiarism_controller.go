package controller

import (
	"examjudge/internal/plagiarism"
	"examjudge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// PlagiarismController handles plagiarism sweep and comparison endpoints.
type PlagiarismController struct {
	service *plagiarism.Service
}

// NewPlagiarismController creates a new controller.
func NewPlagiarismController(service *plagiarism.Service) *PlagiarismController {
	return &PlagiarismController{service: service}
}

// DetectRequest tunes one sweep. Threshold 0 uses the configured default.
type DetectRequest struct {
	Threshold float64 `json:"threshold"`
}

// CompareRequest is a direct two-way comparison.
type CompareRequest struct {
	Code1 string `json:"code1" binding:"required"`
	Code2 string `json:"code2" binding:"required"`
}

// Detect sweeps every student's latest submission for one question.
func (h *PlagiarismController) Detect(c *gin.Context) {
	questionID := c.Param("id")
	if questionID == "" {
		response.BadRequest(c, "Invalid question id")
		return
	}
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	stats, err := h.service.DetectForQuestion(c.Request.Context(), questionID, req.Threshold)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// Compare scores two code blobs directly.
func (h *PlagiarismController) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	result, err := h.service.Compare(req.Code1, req.Code2)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
