package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"geyser-scheduler/internal/api/models"
	"geyser-scheduler/internal/model"
)

func writeError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func badRequest(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
}

// errorDetail classifies err. Parameter violations get INVALID_PARAMETER with the offending field.
func errorDetail(err error) models.ErrorDetail {
	var pe *model.ParamError
	if errors.As(err, &pe) {
		return models.ErrorDetail{
			Code:    "INVALID_PARAMETER",
			Message: err.Error(),
			Details: map[string]any{"field": pe.Field},
		}
	}
	if errors.Is(err, model.ErrInvalidParameter) {
		return models.ErrorDetail{Code: "INVALID_PARAMETER", Message: err.Error()}
	}
	return models.ErrorDetail{Code: "INVALID_CONFIG", Message: err.Error()}
}

func writeConfigError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: errorDetail(err)})
}
