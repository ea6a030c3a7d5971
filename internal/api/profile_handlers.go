package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
)

func (h *handler) getProfile(c *gin.Context) {
	profile, err := h.deps.Users.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if !h.bind(c, &req) {
		return
	}

	profile, err := h.deps.Users.UpdateProfile(c.Request.Context(), currentUser(c), services.ProfileUpdate{
		DisplayName: req.DisplayName,
		Height:      req.Height,
		Weight:      req.Weight,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) updateGoals(c *gin.Context) {
	var req goalsRequest
	if !h.bind(c, &req) {
		return
	}

	profile, err := h.deps.Users.UpdateGoals(c.Request.Context(), currentUser(c), req.goals())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) listWeights(c *gin.Context) {
	entries, err := h.deps.Users.WeightHistory(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *handler) addWeight(c *gin.Context) {
	var req weightRequest
	if !h.bind(c, &req) {
		return
	}

	entry, err := h.deps.Users.AddWeight(c.Request.Context(), currentUser(c), req.Date, req.Weight)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
