package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

func (h *ESGHandler) Dashboard(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var dashboard models.Dashboard
	var err error

	if dashboard.Profile, err = h.repo.GetUser(ctx, user.ID); err != nil {
		h.internalError(c, "failed to load dashboard profile", err)
		return
	}
	if dashboard.Assessments, err = h.repo.ListAssessments(ctx, user.ID, dashboardAssessments); err != nil {
		h.internalError(c, "failed to load dashboard assessments", err)
		return
	}
	if dashboard.LatestReport, err = h.repo.LatestReport(ctx, user.ID); err != nil {
		h.internalError(c, "failed to load dashboard report", err)
		return
	}
	if dashboard.LatestAnalytics, err = h.repo.LatestAnalytics(ctx, user.ID); err != nil {
		h.internalError(c, "failed to load dashboard analytics", err)
		return
	}

	if dashboard.Assessments == nil {
		dashboard.Assessments = []models.Assessment{}
	}

	c.JSON(http.StatusOK, dashboard)
}
