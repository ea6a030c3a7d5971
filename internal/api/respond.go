package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errorBody(err error) (int, errorResponse) {
	if appErr, ok := apperrors.As(err); ok {
		return apperrors.HTTPStatus(err), errorResponse{Error: appErr.Message, Code: appErr.Code}
	}
	return http.StatusInternalServerError, errorResponse{
		Error: apperrors.ErrInternalServer.Message,
		Code:  apperrors.ErrInternalServer.Code,
	}
}

// fail logs err by severity and renders it
func (h *handler) fail(c *gin.Context, err error) {
	h.errors.Handle(c.Request.Context(), err)
	status, body := errorBody(err)
	c.JSON(status, body)
}

func abortWithError(c *gin.Context, err error) {
	status, body := errorBody(err)
	c.AbortWithStatusJSON(status, body)
}

// bind decodes the JSON body and renders binding failures as 400
func (h *handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid request: " + err.Error(),
			Code:  apperrors.ErrInvalidInput.Code,
		})
		return false
	}
	return true
}
