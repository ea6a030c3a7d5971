package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) signup(c *gin.Context) {
	var req signupRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.deps.Auth.Signup(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.deps.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
