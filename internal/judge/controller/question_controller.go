package controller

import (
	"strings"

	"examjudge/internal/judge/model"
	"examjudge/internal/judge/service"
	"examjudge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// QuestionController handles coding question CRUD endpoints.
type QuestionController struct {
	questions *service.QuestionService
}

// NewQuestionController creates a new controller.
func NewQuestionController(questions *service.QuestionService) *QuestionController {
	return &QuestionController{questions: questions}
}

// QuestionRequest is the create/update payload.
type QuestionRequest struct {
	ExamID        string            `json:"examId"`
	Title         string            `json:"title" binding:"required"`
	Description   string            `json:"description"`
	Constraints   string            `json:"constraints"`
	TestCases     []model.TestCase  `json:"testCases" binding:"required"`
	DefaultCode   map[string]string `json:"defaultCode"`
	Points        int               `json:"points"`
	TimeLimitMs   int64             `json:"timeLimitMs"`
	MemoryLimitMb int64             `json:"memoryLimitMb"`
}

// Create stores a new question.
func (h *QuestionController) Create(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	question, err := h.questions.Create(c.Request.Context(), &model.CodingQuestion{
		ExamID:        req.ExamID,
		Title:         req.Title,
		Description:   req.Description,
		Constraints:   req.Constraints,
		TestCases:     req.TestCases,
		DefaultCode:   req.DefaultCode,
		Points:        req.Points,
		TimeLimitMs:   req.TimeLimitMs,
		MemoryLimitMb: req.MemoryLimitMb,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, question)
}

// Get returns one question, redacted unless the caller is an admin.
func (h *QuestionController) Get(c *gin.Context) {
	questionID := c.Param("id")
	if questionID == "" {
		response.BadRequest(c, "Invalid question id")
		return
	}
	question, err := h.questions.Get(c.Request.Context(), questionID, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, question)
}

// ListByExam returns all questions of an exam.
func (h *QuestionController) ListByExam(c *gin.Context) {
	examID := c.Param("examId")
	if examID == "" {
		response.BadRequest(c, "Invalid exam id")
		return
	}
	questions, err := h.questions.ListByExam(c.Request.Context(), examID, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, questions)
}

// Update rewrites a question.
func (h *QuestionController) Update(c *gin.Context) {
	questionID := c.Param("id")
	if questionID == "" {
		response.BadRequest(c, "Invalid question id")
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	err := h.questions.Update(c.Request.Context(), &model.CodingQuestion{
		ID:            questionID,
		ExamID:        req.ExamID,
		Title:         req.Title,
		Description:   req.Description,
		Constraints:   req.Constraints,
		TestCases:     req.TestCases,
		DefaultCode:   req.DefaultCode,
		Points:        req.Points,
		TimeLimitMs:   req.TimeLimitMs,
		MemoryLimitMb: req.MemoryLimitMb,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": questionID})
}

// Delete removes a question and its submissions.
func (h *QuestionController) Delete(c *gin.Context) {
	questionID := c.Param("id")
	if questionID == "" {
		response.BadRequest(c, "Invalid question id")
		return
	}
	if err := h.questions.Delete(c.Request.Context(), questionID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": questionID})
}

func isAdmin(c *gin.Context) bool {
	return strings.EqualFold(c.GetString("user_role"), "admin")
}
