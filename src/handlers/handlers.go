package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/auth"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// Repository is the persistence surface the ESG endpoints need.
type Repository interface {
	models.UserRepository
	models.AssessmentRepository
	models.ReportRepository
	models.AnalyticsRepository
}

const dashboardAssessments = 5

// ESGHandler serves the profile, assessment, report, analytics and dashboard endpoints.
type ESGHandler struct {
	generator models.ESGGenerator
	repo      Repository
	logger    *zap.Logger
}

func NewESGHandler(generator models.ESGGenerator, repo Repository, logger *zap.Logger) *ESGHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ESGHandler{
		generator: generator,
		repo:      repo,
		logger:    logger,
	}
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	return user, true
}

func (h *ESGHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
