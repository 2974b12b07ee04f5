package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"property-import-backend/internal/models"
)

type PropertyReader interface {
	GetProperty(ctx context.Context, id string) (*models.PropertyRecord, error)
	ListProperties(ctx context.Context, source string, limit int) ([]models.PropertyRecord, error)
}

type PropertiesHandler struct {
	store PropertyReader
}

func NewPropertiesHandler(store PropertyReader) *PropertiesHandler {
	return &PropertiesHandler{store: store}
}

// GetProperty godoc
// @Summary     Get an imported property
// @Tags        properties
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Property ID"
// @Success     200 {object} models.PropertyRecord
// @Failure     404 {object} models.ErrorResponse
// @Router      /properties/{id} [get]
func (h *PropertiesHandler) GetProperty(c *gin.Context) {
	rec, err := h.store.GetProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListProperties godoc
// @Summary     List imported properties
// @Tags        properties
// @Produce     json
// @Security    Bearer
// @Param       source query string false "Only properties from this source"
// @Param       limit  query int    false "Maximum results (default 100)"
// @Success     200 {object} models.PropertyListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /properties [get]
func (h *PropertiesHandler) ListProperties(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit", err)
			return
		}
		limit = n
	}

	props, err := h.store.ListProperties(c.Request.Context(), c.Query("source"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PropertyListResponse{Properties: props})
}
