package handlers

import (
	"net/http"

	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// supplierInvoiceHandler handles HTTP requests for the AP invoice lifecycle.
type supplierInvoiceHandler struct {
	invoiceService portssvc.SupplierInvoiceSvcFacade
}

func newSupplierInvoiceHandler(is portssvc.SupplierInvoiceSvcFacade) *supplierInvoiceHandler {
	return &supplierInvoiceHandler{invoiceService: is}
}

// registerSupplierInvoiceRoutes registers routes for supplier invoices.
func registerSupplierInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.SupplierInvoiceSvcFacade) {
	h := newSupplierInvoiceHandler(invoiceService)

	invoices := rg.Group("/supplier-invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.POST("/:id/submit", h.submitInvoice)
		invoices.POST("/:id/approve", h.approveInvoice)
		invoices.POST("/:id/post", h.postInvoice)
		invoices.GET("/:id", h.getInvoice)
		invoices.GET("/:id/tax-lines", h.getInvoiceTaxLines)
	}
}

// createInvoice godoc
// @Summary Draft a supplier invoice
// @Description Validates tax lines against the net amount and saves the invoice as DRAFT
// @Tags supplier-invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateSupplierInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.SupplierInvoiceResponse
// @Failure 400 {object} map[string]string "Tax or total validation failed"
// @Failure 422 {object} map[string]string "Period not open"
// @Security BearerAuth
// @Router /supplier-invoices [post]
func (h *supplierInvoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSupplierInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create supplier invoice")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSupplierInvoiceResponse(invoice))
}

// submitInvoice godoc
// @Summary Submit a draft supplier invoice for approval
// @Tags supplier-invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} dto.SupplierInvoiceResponse
// @Failure 409 {object} map[string]string "Invoice is not in DRAFT"
// @Security BearerAuth
// @Router /supplier-invoices/{id}/submit [post]
func (h *supplierInvoiceHandler) submitInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.invoiceService.SubmitInvoice(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit supplier invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToSupplierInvoiceResponse(invoice))
}

// approveInvoice godoc
// @Summary Approve a submitted supplier invoice
// @Tags supplier-invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} dto.SupplierInvoiceResponse
// @Failure 422 {object} map[string]string "SoD rule blocked the approval"
// @Security BearerAuth
// @Router /supplier-invoices/{id}/approve [post]
func (h *supplierInvoiceHandler) approveInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.invoiceService.ApproveInvoice(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve supplier invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToSupplierInvoiceResponse(invoice))
}

// postInvoice godoc
// @Summary Post an approved supplier invoice to the ledger
// @Description Creates the expense/AP journal atomically with the status change. Reposting returns the existing journal.
// @Tags supplier-invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} map[string]interface{} "invoice and journal"
// @Failure 422 {object} map[string]string "Period, tax or SoD policy blocked the posting"
// @Security BearerAuth
// @Router /supplier-invoices/{id}/post [post]
func (h *supplierInvoiceHandler) postInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, journal, err := h.invoiceService.PostInvoice(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post supplier invoice")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoice": dto.ToSupplierInvoiceResponse(invoice),
		"journal": dto.ToJournalResponse(journal),
	})
}

// getInvoice godoc
// @Summary Get a supplier invoice with its lines
// @Tags supplier-invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} dto.SupplierInvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /supplier-invoices/{id} [get]
func (h *supplierInvoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve supplier invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToSupplierInvoiceResponse(invoice))
}

// getInvoiceTaxLines godoc
// @Summary Get the persisted tax lines of a supplier invoice
// @Tags supplier-invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {array} dto.TaxLineResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /supplier-invoices/{id}/tax-lines [get]
func (h *supplierInvoiceHandler) getInvoiceTaxLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	taxLines, err := h.invoiceService.GetInvoiceTaxLines(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve invoice tax lines")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaxLineResponses(taxLines))
}
