package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"property-import-backend/internal/cloudinary"
	"property-import-backend/internal/models"
	"property-import-backend/internal/services"
)

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	var (
		validationErr  *cloudinary.ValidationError
		hostErr        *cloudinary.HostError
		transportErr   *cloudinary.TransportError
		acquisitionErr *services.AcquisitionError
	)

	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.As(err, &validationErr):
		status, msg = http.StatusBadRequest, "validation failed"
	case services.IsUnknownSource(err):
		status, msg = http.StatusNotFound, "source not found"
	case errors.Is(err, services.ErrJobNotFound):
		status, msg = http.StatusNotFound, "job not found"
	case errors.Is(err, models.ErrPropertyNotFound):
		status, msg = http.StatusNotFound, "property not found"
	case errors.Is(err, services.ErrJobNotCompleted):
		status, msg = http.StatusConflict, "job not completed"
	case errors.Is(err, services.ErrArchiveDisabled), errors.Is(err, cloudinary.ErrDeletionNotConfigured):
		status, msg = http.StatusNotImplemented, "not configured"
	case errors.As(err, &acquisitionErr):
		status, msg = http.StatusBadGateway, "acquisition failed"
	case errors.As(err, &hostErr):
		status, msg = http.StatusBadGateway, "media host rejected request"
	case errors.As(err, &transportErr):
		status, msg = http.StatusBadGateway, "media host unreachable"
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "request timed out"
	}

	c.JSON(status, models.ErrorResponse{Error: msg, Message: err.Error()})
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := models.ErrorResponse{Error: msg}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// bindStrictJSON decodes the body into dst, rejecting unknown fields, then
// runs gin's struct validation.
func bindStrictJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil {
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(dst)
}
