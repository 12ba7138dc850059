package handlers

import (
	"net/http"

	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// varianceHandler handles the budget-vs-actual report.
type varianceHandler struct {
	varianceService portssvc.VarianceSvcFacade
}

func newVarianceHandler(vs portssvc.VarianceSvcFacade) *varianceHandler {
	return &varianceHandler{varianceService: vs}
}

// registerVarianceRoutes registers the reporting routes.
func registerVarianceRoutes(rg *gin.RouterGroup, varianceService portssvc.VarianceSvcFacade) {
	h := newVarianceHandler(varianceService)

	reports := rg.Group("/reports")
	{
		reports.POST("/budget-variance", h.budgetVariance)
	}
}

// budgetVariance godoc
// @Summary Budget vs actual variance report
// @Description Compares the active budget's latest revision against posted actuals for a contiguous period range
// @Tags reports
// @Accept  json
// @Produce  json
// @Param   request body dto.BudgetVarianceRequest true "Fiscal year and date range"
// @Success 200 {array} dto.VarianceRowResponse
// @Failure 400 {object} map[string]string "Invalid range or period gap"
// @Failure 404 {object} map[string]string "No active budget for the fiscal year"
// @Security BearerAuth
// @Router /reports/budget-variance [post]
func (h *varianceHandler) budgetVariance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BudgetVarianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rows, err := h.varianceService.BudgetVariance(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute budget variance")
		return
	}
	c.JSON(http.StatusOK, dto.ToVarianceRowResponses(rows))
}
