package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/dispatcher"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// CompletionHandler exposes the dispatcher directly for ad-hoc prompts.
type CompletionHandler struct {
	completer models.Completer
	logger    *zap.Logger
}

func NewCompletionHandler(completer models.Completer, logger *zap.Logger) *CompletionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionHandler{
		completer: completer,
		logger:    logger,
	}
}

func (h *CompletionHandler) HandleCompletion(c *gin.Context) {
	var req models.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Format {
	case "":
		req.Format = models.FormatFreeText
	case models.FormatFreeText, models.FormatStructured:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be structured or free-text"})
		return
	}

	result, err := h.completer.Complete(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, dispatcher.ErrAllProvidersFailed) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "All AI providers are currently unavailable"})
			return
		}
		h.logger.Error("completion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate completion"})
		return
	}

	c.JSON(http.StatusOK, result)
}
