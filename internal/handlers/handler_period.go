package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// periodHandler exposes accounting period lookups.
type periodHandler struct {
	periodService portssvc.PeriodGuardSvcFacade
}

func newPeriodHandler(ps portssvc.PeriodGuardSvcFacade) *periodHandler {
	return &periodHandler{periodService: ps}
}

// registerPeriodRoutes registers the period lookup routes.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodGuardSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.GET("/resolve", h.resolvePeriod)
	}
}

// resolvePeriod godoc
// @Summary Resolve the accounting period covering a date
// @Tags periods
// @Produce  json
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "No period covers the date"
// @Security BearerAuth
// @Router /periods/resolve [get]
func (h *periodHandler) resolvePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	period, err := h.periodService.ResolvePeriod(c.Request.Context(), caller.TenantID, date)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to resolve accounting period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}
