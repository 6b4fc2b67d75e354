package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/esg"
	"www.github.com/Wanderer0074348/Yahmi/src/logging"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

type StreamAnalysisRequest struct {
	Responses map[string]any `json:"responses" binding:"required"`
}

func (h *ESGHandler) DeepAnalytics(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var params models.DeepAnalyticsParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params.UserID = user.ID
	h.logger.Debug("deep analytics requested",
		zap.String("user_id", user.ID),
		zap.Any("company", logging.Redact(params.Company)),
	)

	doc, err := h.generator.GenerateDeepAnalytics(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate deep analytics"})
		return
	}

	analytics := esg.NewDeepAnalytics(user.ID, params.ReportID, doc)
	if err := h.repo.CreateAnalytics(c.Request.Context(), analytics); err != nil {
		h.internalError(c, "failed to save analytics", err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (h *ESGHandler) LatestAnalytics(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	analytics, err := h.repo.LatestAnalytics(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "failed to load latest analytics", err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// StreamAnalysis relays generated insights as server-sent events. Failures
// before the first chunk are reported as a normal JSON error.
func (h *ESGHandler) StreamAnalysis(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	var req StreamAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Responses are required"})
		return
	}

	started := false
	err := h.generator.StreamAnalysis(c.Request.Context(), req.Responses, func(chunk string) error {
		if !started {
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Status(http.StatusOK)
			started = true
		}

		c.SSEvent("message", gin.H{"text": chunk})
		c.Writer.Flush()
		return c.Request.Context().Err()
	})

	if !started {
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stream analysis"})
			return
		}
		c.Header("Content-Type", "text/event-stream")
		c.Status(http.StatusOK)
	}

	if err != nil {
		h.logger.Warn("analysis stream interrupted", zap.Error(err))
		c.SSEvent("error", gin.H{"error": "Failed to stream analysis"})
	} else {
		c.SSEvent("done", gin.H{})
	}
	c.Writer.Flush()
}
