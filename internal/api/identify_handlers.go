package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
	"github.com/vladimiradmaev/macro-tracker/internal/services"
	"github.com/vladimiradmaev/macro-tracker/internal/storage"
)

const (
	maxImageBytes = 10 << 20
	// base64 grows the image by 4/3, plus room for the other fields
	maxUploadBody = maxImageBytes/3*4 + 64<<10
)

var errImageTooLarge = apperrors.NewValidationError("image must be at most 10MB")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // token-authenticated, no cookies
}

// startIdentify accepts a multipart "image" field or a JSON data URI
func (h *handler) startIdentify(c *gin.Context) {
	img, servingSize, err := readImage(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	session, err := h.deps.Identify.Start(c.Request.Context(), currentUser(c), img, servingSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, session)
}

func readImage(c *gin.Context) (domain.Image, string, error) {
	limitBody(c)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if err != nil {
			if bodyTooLarge(err) {
				return domain.Image{}, "", errImageTooLarge
			}
			return domain.Image{}, "", apperrors.NewValidationError("image file is required")
		}
		if header.Size > maxImageBytes {
			return domain.Image{}, "", errImageTooLarge
		}
		f, err := header.Open()
		if err != nil {
			return domain.Image{}, "", apperrors.NewInternalError(err)
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
		if err != nil {
			return domain.Image{}, "", apperrors.NewInternalError(err)
		}
		mimeType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = http.DetectContentType(data)
		}
		return domain.Image{Data: data, MIMEType: mimeType}, c.PostForm("servingSize"), nil
	}

	var req identifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if bodyTooLarge(err) {
			return domain.Image{}, "", errImageTooLarge
		}
		return domain.Image{}, "", apperrors.NewValidationError("photoDataUri or a multipart image is required")
	}
	img, err := decodePhoto(req.PhotoDataURI)
	if err != nil {
		return domain.Image{}, "", err
	}
	return img, req.ServingSize, nil
}

// limitBody caps the request body before anything reads it
func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
}

func bodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func decodePhoto(uri string) (domain.Image, error) {
	img, err := storage.DecodeDataURI(uri)
	if err != nil {
		return domain.Image{}, apperrors.NewValidationError(err.Error())
	}
	if len(img.Data) > maxImageBytes {
		return domain.Image{}, errImageTooLarge
	}
	return img, nil
}

func (h *handler) currentIdentify(c *gin.Context) {
	session, err := h.deps.Identify.Current(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handler) resetIdentify(c *gin.Context) {
	if err := h.deps.Identify.Reset(c.Request.Context(), currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) saveIdentify(c *gin.Context) {
	var req saveIdentifyRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	meal, err := h.deps.Identify.SaveSession(c.Request.Context(), currentUser(c), services.MealInput{
		Name:     req.Name,
		Category: parseCategory(req.Category),
		Date:     req.Date,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// identifyUpdates streams item updates of the user's sessions
func (h *handler) identifyUpdates(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	h.deps.Hub.Serve(conn, currentUser(c))
}
