package handlers

import (
	"net/http"

	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// customerReceiptHandler handles HTTP requests for the receipt lifecycle.
type customerReceiptHandler struct {
	receiptService portssvc.CustomerReceiptSvcFacade
}

func newCustomerReceiptHandler(rs portssvc.CustomerReceiptSvcFacade) *customerReceiptHandler {
	return &customerReceiptHandler{receiptService: rs}
}

// registerCustomerReceiptRoutes registers routes for customer receipts.
func registerCustomerReceiptRoutes(rg *gin.RouterGroup, receiptService portssvc.CustomerReceiptSvcFacade) {
	h := newCustomerReceiptHandler(receiptService)

	receipts := rg.Group("/customer-receipts")
	{
		receipts.POST("", h.createReceipt)
		receipts.POST("/:id/submit", h.submitReceipt)
		receipts.POST("/:id/approve", h.approveReceipt)
		receipts.POST("/:id/post", h.postReceipt)
		receipts.GET("/:id", h.getReceipt)
	}
}

// createReceipt godoc
// @Summary Draft a customer receipt with invoice allocations
// @Description Allocations must target posted invoices and sum to the receipt total
// @Tags customer-receipts
// @Accept  json
// @Produce  json
// @Param   receipt body dto.CreateReceiptRequest true "Receipt details"
// @Success 201 {object} dto.ReceiptResponse
// @Failure 400 {object} map[string]string "Allocation validation failed"
// @Security BearerAuth
// @Router /customer-receipts [post]
func (h *customerReceiptHandler) createReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create receipt")
		return
	}
	c.JSON(http.StatusCreated, dto.ToReceiptResponse(receipt))
}

// submitReceipt godoc
// @Summary Submit a draft receipt for approval
// @Tags customer-receipts
// @Produce  json
// @Param   id path string true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 409 {object} map[string]string "Receipt is not in DRAFT"
// @Security BearerAuth
// @Router /customer-receipts/{id}/submit [post]
func (h *customerReceiptHandler) submitReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipt, err := h.receiptService.SubmitReceipt(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit receipt")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// approveReceipt godoc
// @Summary Approve a submitted receipt
// @Description Re-checks every allocation against the invoice's current outstanding balance
// @Tags customer-receipts
// @Produce  json
// @Param   id path string true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 422 {object} map[string]string "Allocation exceeds outstanding balance or SoD blocked"
// @Security BearerAuth
// @Router /customer-receipts/{id}/approve [post]
func (h *customerReceiptHandler) approveReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipt, err := h.receiptService.ApproveReceipt(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve receipt")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// postReceipt godoc
// @Summary Post an approved receipt to the ledger
// @Tags customer-receipts
// @Produce  json
// @Param   id path string true "Receipt ID"
// @Success 200 {object} map[string]interface{} "receipt and journal"
// @Failure 422 {object} map[string]string "Period or SoD policy blocked the posting"
// @Security BearerAuth
// @Router /customer-receipts/{id}/post [post]
func (h *customerReceiptHandler) postReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipt, journal, err := h.receiptService.PostReceipt(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post receipt")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"receipt": dto.ToReceiptResponse(receipt),
		"journal": dto.ToJournalResponse(journal),
	})
}

// getReceipt godoc
// @Summary Get a receipt with its allocations
// @Tags customer-receipts
// @Produce  json
// @Param   id path string true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} map[string]string "Receipt not found"
// @Security BearerAuth
// @Router /customer-receipts/{id} [get]
func (h *customerReceiptHandler) getReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipt, err := h.receiptService.GetReceiptByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve receipt")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}
