package controller

import (
	"examjudge/internal/judge/model"
	"examjudge/internal/judge/service"
	"examjudge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// CodingController handles run/submit and submission history endpoints.
type CodingController struct {
	submissions *service.SubmissionService
}

// NewCodingController creates a new controller.
func NewCodingController(submissions *service.SubmissionService) *CodingController {
	return &CodingController{submissions: submissions}
}

// RunRequest is the payload for a practice run.
type RunRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Code       string `json:"code" binding:"required"`
	Language   string `json:"language" binding:"required"`
}

// SubmitRequest is the payload for a graded submission.
type SubmitRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Code       string `json:"code" binding:"required"`
	Language   string `json:"language" binding:"required"`
}

// Run judges the sample case without persisting anything.
func (h *CodingController) Run(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	out, err := h.submissions.RunCode(c.Request.Context(), service.RunCodeInput{
		QuestionID: req.QuestionID,
		Code:       req.Code,
		Language:   req.Language,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}

// Submit judges every case and records the attempt for the caller.
func (h *CodingController) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, "Missing user identity")
		return
	}

	out, err := h.submissions.SubmitCode(c.Request.Context(), service.SubmitCodeInput{
		QuestionID: req.QuestionID,
		UserID:     userID,
		Code:       req.Code,
		Language:   req.Language,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}

// GetMySubmissions returns the caller's attempts for a question, newest first.
func (h *CodingController) GetMySubmissions(c *gin.Context) {
	questionID := c.Param("id")
	if questionID == "" {
		response.BadRequest(c, "Invalid question id")
		return
	}
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, "Missing user identity")
		return
	}

	submissions, err := h.submissions.GetUserSubmissions(c.Request.Context(), userID, questionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, redactCodes(submissions))
}

// GetQuestionSubmissions returns every submitted attempt for a question.
// Admin only; codes are included for review.
func (h *CodingController) GetQuestionSubmissions(c *gin.Context) {
	questionID := c.Param("id")
	if questionID == "" {
		response.BadRequest(c, "Invalid question id")
		return
	}
	submissions, err := h.submissions.GetQuestionSubmissions(c.Request.Context(), questionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, submissions)
}

// GetStatus returns the live status of one submission.
func (h *CodingController) GetStatus(c *gin.Context) {
	submissionID := c.Param("id")
	if submissionID == "" {
		response.BadRequest(c, "Invalid submission id")
		return
	}
	status, err := h.submissions.GetLiveStatus(c.Request.Context(), submissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}

// redactCodes blanks the stored source in list responses; the student
// already has their own code and history views only need outcomes.
func redactCodes(submissions []*model.Submission) []*model.Submission {
	out := make([]*model.Submission, 0, len(submissions))
	for _, sub := range submissions {
		copied := *sub
		copied.Code = ""
		out = append(out, &copied)
	}
	return out
}
