package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/logging"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

type SubmitAssessmentRequest struct {
	Industry    string         `json:"industry" binding:"required"`
	Responses   map[string]any `json:"responses" binding:"required"`
	CarbonScore *float64       `json:"carbonScore"`
	ESGScore    *float64       `json:"esgScore"`
}

func (h *ESGHandler) GenerateAssessment(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	var params models.AssessmentParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Industry is required"})
		return
	}

	questions, err := h.generator.GenerateAssessment(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate assessment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *ESGHandler) SubmitAssessment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Industry and responses are required"})
		return
	}

	assessment := &models.Assessment{
		UserID:      user.ID,
		Industry:    req.Industry,
		Responses:   req.Responses,
		CarbonScore: req.CarbonScore,
		ESGScore:    req.ESGScore,
	}
	if err := h.repo.CreateAssessment(c.Request.Context(), assessment); err != nil {
		h.internalError(c, "failed to save assessment", err)
		return
	}

	h.logger.Debug("assessment submitted",
		zap.String("user_id", user.ID),
		zap.String("assessment_id", assessment.ID),
		zap.Any("responses", logging.Redact(req.Responses)),
	)

	c.JSON(http.StatusOK, assessment)
}

func (h *ESGHandler) ListAssessments(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	assessments, err := h.repo.ListAssessments(c.Request.Context(), user.ID, 0)
	if err != nil {
		h.internalError(c, "failed to list assessments", err)
		return
	}

	c.JSON(http.StatusOK, assessments)
}
