package handlers

import (
	"net/http"

	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// bankMatchHandler handles HTTP requests for bank reconciliation matches.
type bankMatchHandler struct {
	matchService portssvc.BankMatchSvcFacade
}

func newBankMatchHandler(ms portssvc.BankMatchSvcFacade) *bankMatchHandler {
	return &bankMatchHandler{matchService: ms}
}

// registerBankMatchRoutes registers routes for bank statement matches.
func registerBankMatchRoutes(rg *gin.RouterGroup, matchService portssvc.BankMatchSvcFacade) {
	h := newBankMatchHandler(matchService)

	matches := rg.Group("/bank-matches")
	{
		matches.POST("", h.createMatch)
		matches.POST("/:id/submit", h.submitMatch)
		matches.POST("/:id/approve", h.approveMatch)
		matches.POST("/:id/post", h.postMatch)
		matches.GET("/:id", h.getMatch)
	}
}

// createMatch godoc
// @Summary Draft a bank reconciliation match for one statement line
// @Tags bank-matches
// @Accept  json
// @Produce  json
// @Param   match body dto.CreateBankMatchRequest true "Match details"
// @Success 201 {object} dto.BankMatchResponse
// @Failure 400 {object} map[string]string "Amount or bank account validation failed"
// @Failure 409 {object} map[string]string "Statement line already matched"
// @Security BearerAuth
// @Router /bank-matches [post]
func (h *bankMatchHandler) createMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBankMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	match, err := h.matchService.CreateMatch(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create bank match")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBankMatchResponse(match))
}

// submitMatch godoc
// @Summary Submit a draft bank match for approval
// @Tags bank-matches
// @Produce  json
// @Param   id path string true "Match ID"
// @Success 200 {object} dto.BankMatchResponse
// @Failure 409 {object} map[string]string "Match is not in DRAFT"
// @Security BearerAuth
// @Router /bank-matches/{id}/submit [post]
func (h *bankMatchHandler) submitMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	match, err := h.matchService.SubmitMatch(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit bank match")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankMatchResponse(match))
}

// approveMatch godoc
// @Summary Approve a submitted bank match
// @Tags bank-matches
// @Produce  json
// @Param   id path string true "Match ID"
// @Success 200 {object} dto.BankMatchResponse
// @Failure 422 {object} map[string]string "SoD rule blocked the approval"
// @Security BearerAuth
// @Router /bank-matches/{id}/approve [post]
func (h *bankMatchHandler) approveMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	match, err := h.matchService.ApproveMatch(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve bank match")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankMatchResponse(match))
}

// postMatch godoc
// @Summary Post an approved bank match to the ledger
// @Description Moves the statement amount between the bank account and the clearing account
// @Tags bank-matches
// @Produce  json
// @Param   id path string true "Match ID"
// @Success 200 {object} map[string]interface{} "match and journal"
// @Failure 422 {object} map[string]string "Period or SoD policy blocked the posting"
// @Security BearerAuth
// @Router /bank-matches/{id}/post [post]
func (h *bankMatchHandler) postMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	match, journal, err := h.matchService.PostMatch(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post bank match")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"match":   dto.ToBankMatchResponse(match),
		"journal": dto.ToJournalResponse(journal),
	})
}

// getMatch godoc
// @Summary Get a bank match by ID
// @Tags bank-matches
// @Produce  json
// @Param   id path string true "Match ID"
// @Success 200 {object} dto.BankMatchResponse
// @Failure 404 {object} map[string]string "Match not found"
// @Security BearerAuth
// @Router /bank-matches/{id} [get]
func (h *bankMatchHandler) getMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	match, err := h.matchService.GetMatchByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve bank match")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankMatchResponse(match))
}
