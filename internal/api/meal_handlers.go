package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
)

// dailySummary serves GET /api/meals?date=YYYY-MM-DD
func (h *handler) dailySummary(c *gin.Context) {
	summary, err := h.deps.Analytics.Daily(c.Request.Context(), currentUser(c), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handler) createMeal(c *gin.Context) {
	limitBody(c)
	var req createMealRequest
	if !h.bind(c, &req) {
		return
	}

	var photo *domain.Image
	if req.PhotoDataURI != "" {
		img, err := decodePhoto(req.PhotoDataURI)
		if err != nil {
			h.fail(c, err)
			return
		}
		photo = &img
	}

	meal, err := h.deps.Meals.Create(c.Request.Context(), currentUser(c), req.input(), photo)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (h *handler) getMeal(c *gin.Context) {
	meal, err := h.deps.Meals.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *handler) updateMeal(c *gin.Context) {
	var req updateMealRequest
	if !h.bind(c, &req) {
		return
	}

	meal, err := h.deps.Meals.Update(c.Request.Context(), currentUser(c), c.Param("id"), services.MealEdit{
		Name:      req.Name,
		Category:  parseCategory(req.Category),
		FoodItems: toFoodItems(req.FoodItems),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *handler) deleteMeal(c *gin.Context) {
	if err := h.deps.Meals.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) weeklyTrend(c *gin.Context) {
	days, err := h.deps.Analytics.Weekly(c.Request.Context(), currentUser(c), c.Query("anchor"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *handler) lookupFood(c *gin.Context) {
	var req lookupRequest
	if !h.bind(c, &req) {
		return
	}

	item, err := h.deps.Identify.Lookup(c.Request.Context(), req.Name, req.ServingSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
