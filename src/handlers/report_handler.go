package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
	"www.github.com/Wanderer0074348/Yahmi/src/store"
)

type GenerateReportRequest struct {
	AssessmentID string         `json:"assessmentId"`
	Responses    map[string]any `json:"responses" binding:"required"`
}

func (h *ESGHandler) GenerateReport(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Responses are required"})
		return
	}

	ctx := c.Request.Context()
	if req.AssessmentID != "" {
		assessment, err := h.repo.GetAssessment(ctx, req.AssessmentID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && assessment.UserID != user.ID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assessment not found"})
			return
		}
		if err != nil {
			h.internalError(c, "failed to load assessment", err)
			return
		}
	}

	aiReport, err := h.generator.GenerateReport(ctx, req.Responses)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	report := newReport(user.ID, req.AssessmentID, aiReport)
	if err := h.repo.CreateReport(ctx, report); err != nil {
		h.internalError(c, "failed to save report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// newReport flattens the generated report into the persisted record. The
// overall score doubles as the carbon footprint figure.
func newReport(userID, assessmentID string, aiReport *models.ESGReport) *models.Report {
	return &models.Report{
		UserID:             userID,
		AssessmentID:       assessmentID,
		CarbonFootprint:    aiReport.Score,
		ESGScore:           aiReport.Score,
		AIReport:           aiReport,
		Recommendations:    aiReport.Suggestions,
		EnvironmentalScore: aiReport.EnvironmentalScore,
		SocialScore:        aiReport.SocialScore,
		GovernanceScore:    aiReport.GovernanceScore,
		RiskLevel:          aiReport.RiskLevel,
		BenchmarkPosition:  aiReport.BenchmarkPosition,
		ComplianceGaps:     aiReport.ComplianceGaps,
		QuickWins:          aiReport.QuickWins,
		LongTermGoals:      aiReport.LongTermGoals,
	}
}

func (h *ESGHandler) ListReports(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	reports, err := h.repo.ListReports(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "failed to list reports", err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (h *ESGHandler) LatestReport(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.repo.LatestReport(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "failed to load latest report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}
