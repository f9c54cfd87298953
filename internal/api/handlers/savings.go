package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geyser-scheduler/internal/api/models"
	"geyser-scheduler/internal/savings"
)

// ProjectSavings handles POST /api/v1/savings
func ProjectSavings(c *gin.Context) {
	var req models.SavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := savings.ProjectSavings(req.Load, req.TariffPerKWh)
	if err != nil {
		writeConfigError(c, err)
		return
	}
	c.JSON(http.StatusOK, savingsResponse(p, req.Currency))
}

func savingsResponse(p savings.Projection, currency string) *models.SavingsResponse {
	energy, _ := p.EnergyKWh.Float64()
	return &models.SavingsResponse{
		Currency:  currency,
		EnergyKWh: energy,
		Daily:     p.Daily.StringFixed(2),
		Weekly:    p.Weekly.StringFixed(2),
		Monthly:   p.Monthly.StringFixed(2),
	}
}
