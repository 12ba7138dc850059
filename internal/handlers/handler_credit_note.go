package handlers

import (
	"net/http"

	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// creditNoteHandler handles HTTP requests for the credit note lifecycle.
type creditNoteHandler struct {
	creditNoteService portssvc.CreditNoteSvcFacade
}

func newCreditNoteHandler(cs portssvc.CreditNoteSvcFacade) *creditNoteHandler {
	return &creditNoteHandler{creditNoteService: cs}
}

// registerCreditNoteRoutes registers routes for customer credit notes.
func registerCreditNoteRoutes(rg *gin.RouterGroup, creditNoteService portssvc.CreditNoteSvcFacade) {
	h := newCreditNoteHandler(creditNoteService)

	creditNotes := rg.Group("/credit-notes")
	{
		creditNotes.POST("", h.createCreditNote)
		creditNotes.POST("/:id/submit", h.submitCreditNote)
		creditNotes.POST("/:id/approve", h.approveCreditNote)
		creditNotes.POST("/:id/post", h.postCreditNote)
		creditNotes.POST("/:id/void", h.voidCreditNote)
		creditNotes.GET("/:id", h.getCreditNote)
	}
}

// createCreditNote godoc
// @Summary Draft a credit note against a posted customer invoice
// @Tags credit-notes
// @Accept  json
// @Produce  json
// @Param   creditNote body dto.CreateCreditNoteRequest true "Credit note details"
// @Success 201 {object} dto.CreditNoteResponse
// @Failure 400 {object} map[string]string "Tax or invoice validation failed"
// @Security BearerAuth
// @Router /credit-notes [post]
func (h *creditNoteHandler) createCreditNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	note, err := h.creditNoteService.CreateCreditNote(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create credit note")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCreditNoteResponse(note))
}

// submitCreditNote godoc
// @Summary Submit a draft credit note for approval
// @Tags credit-notes
// @Produce  json
// @Param   id path string true "Credit note ID"
// @Success 200 {object} dto.CreditNoteResponse
// @Failure 409 {object} map[string]string "Credit note is not in DRAFT"
// @Security BearerAuth
// @Router /credit-notes/{id}/submit [post]
func (h *creditNoteHandler) submitCreditNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	note, err := h.creditNoteService.SubmitCreditNote(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit credit note")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditNoteResponse(note))
}

// approveCreditNote godoc
// @Summary Approve a submitted credit note
// @Description Re-checks the credit amount against the invoice's current outstanding balance
// @Tags credit-notes
// @Produce  json
// @Param   id path string true "Credit note ID"
// @Success 200 {object} dto.CreditNoteResponse
// @Failure 422 {object} map[string]string "Credit exceeds outstanding balance or SoD blocked"
// @Security BearerAuth
// @Router /credit-notes/{id}/approve [post]
func (h *creditNoteHandler) approveCreditNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	note, err := h.creditNoteService.ApproveCreditNote(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve credit note")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditNoteResponse(note))
}

// postCreditNote godoc
// @Summary Post an approved credit note to the ledger
// @Tags credit-notes
// @Produce  json
// @Param   id path string true "Credit note ID"
// @Success 200 {object} map[string]interface{} "creditNote and journal"
// @Failure 422 {object} map[string]string "Period, tax or SoD policy blocked the posting"
// @Security BearerAuth
// @Router /credit-notes/{id}/post [post]
func (h *creditNoteHandler) postCreditNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	note, journal, err := h.creditNoteService.PostCreditNote(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post credit note")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"creditNote": dto.ToCreditNoteResponse(note),
		"journal":    dto.ToJournalResponse(journal),
	})
}

// voidCreditNote godoc
// @Summary Void a posted credit note via a reversal journal
// @Description Creates the mirror-image reversal and marks the credit note VOID. Voiding twice is a no-op.
// @Tags credit-notes
// @Accept  json
// @Produce  json
// @Param   id path string true "Credit note ID"
// @Param   void body dto.VoidRequest true "Void reason (min 10 characters)"
// @Success 200 {object} map[string]interface{} "creditNote and reversal journal"
// @Failure 400 {object} map[string]string "Reason too short"
// @Failure 409 {object} map[string]string "Credit note is not POSTED"
// @Security BearerAuth
// @Router /credit-notes/{id}/void [post]
func (h *creditNoteHandler) voidCreditNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.VoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	note, reversal, err := h.creditNoteService.VoidCreditNote(c.Request.Context(), caller, c.Param("id"), req.Reason)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to void credit note")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"creditNote": dto.ToCreditNoteResponse(note),
		"journal":    dto.ToJournalResponse(reversal),
	})
}

// getCreditNote godoc
// @Summary Get a credit note with its lines
// @Tags credit-notes
// @Produce  json
// @Param   id path string true "Credit note ID"
// @Success 200 {object} dto.CreditNoteResponse
// @Failure 404 {object} map[string]string "Credit note not found"
// @Security BearerAuth
// @Router /credit-notes/{id} [get]
func (h *creditNoteHandler) getCreditNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	note, err := h.creditNoteService.GetCreditNoteByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve credit note")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditNoteResponse(note))
}
