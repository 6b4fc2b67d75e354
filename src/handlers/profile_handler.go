package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
	"www.github.com/Wanderer0074348/Yahmi/src/store"
)

func (h *ESGHandler) GetProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.repo.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
			return
		}
		h.internalError(c, "failed to load profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ESGHandler) UpdateProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.repo.UpdateProfile(c.Request.Context(), user.ID, &update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
			return
		}
		h.internalError(c, "failed to update profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
