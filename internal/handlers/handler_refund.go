package handlers

import (
	"net/http"

	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// refundHandler handles HTTP requests for the customer refund lifecycle.
type refundHandler struct {
	refundService portssvc.RefundSvcFacade
}

func newRefundHandler(rs portssvc.RefundSvcFacade) *refundHandler {
	return &refundHandler{refundService: rs}
}

// registerRefundRoutes registers routes for customer refunds.
func registerRefundRoutes(rg *gin.RouterGroup, refundService portssvc.RefundSvcFacade) {
	h := newRefundHandler(refundService)

	refunds := rg.Group("/refunds")
	{
		refunds.POST("", h.createRefund)
		refunds.POST("/:id/submit", h.submitRefund)
		refunds.POST("/:id/approve", h.approveRefund)
		refunds.POST("/:id/post", h.postRefund)
		refunds.POST("/:id/void", h.voidRefund)
		refunds.GET("/:id", h.getRefund)
	}
}

// createRefund godoc
// @Summary Draft a customer refund
// @Description Optionally linked to a posted credit note, whose total caps the refund amount
// @Tags refunds
// @Accept  json
// @Produce  json
// @Param   refund body dto.CreateRefundRequest true "Refund details"
// @Success 201 {object} dto.RefundResponse
// @Failure 400 {object} map[string]string "Credit note link validation failed"
// @Security BearerAuth
// @Router /refunds [post]
func (h *refundHandler) createRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refund, err := h.refundService.CreateRefund(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create refund")
		return
	}
	c.JSON(http.StatusCreated, dto.ToRefundResponse(refund))
}

// submitRefund godoc
// @Summary Submit a draft refund for approval
// @Tags refunds
// @Produce  json
// @Param   id path string true "Refund ID"
// @Success 200 {object} dto.RefundResponse
// @Failure 409 {object} map[string]string "Refund is not in DRAFT"
// @Security BearerAuth
// @Router /refunds/{id}/submit [post]
func (h *refundHandler) submitRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refund, err := h.refundService.SubmitRefund(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit refund")
		return
	}
	c.JSON(http.StatusOK, dto.ToRefundResponse(refund))
}

// approveRefund godoc
// @Summary Approve a submitted refund
// @Tags refunds
// @Produce  json
// @Param   id path string true "Refund ID"
// @Success 200 {object} dto.RefundResponse
// @Failure 422 {object} map[string]string "SoD rule blocked the approval"
// @Security BearerAuth
// @Router /refunds/{id}/approve [post]
func (h *refundHandler) approveRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refund, err := h.refundService.ApproveRefund(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve refund")
		return
	}
	c.JSON(http.StatusOK, dto.ToRefundResponse(refund))
}

// postRefund godoc
// @Summary Post an approved refund to the ledger
// @Tags refunds
// @Produce  json
// @Param   id path string true "Refund ID"
// @Success 200 {object} map[string]interface{} "refund and journal"
// @Failure 422 {object} map[string]string "Period or SoD policy blocked the posting"
// @Security BearerAuth
// @Router /refunds/{id}/post [post]
func (h *refundHandler) postRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refund, journal, err := h.refundService.PostRefund(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post refund")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"refund":  dto.ToRefundResponse(refund),
		"journal": dto.ToJournalResponse(journal),
	})
}

// voidRefund godoc
// @Summary Void a posted refund via a reversal journal
// @Tags refunds
// @Accept  json
// @Produce  json
// @Param   id path string true "Refund ID"
// @Param   void body dto.VoidRequest true "Void reason (min 10 characters)"
// @Success 200 {object} map[string]interface{} "refund and reversal journal"
// @Failure 400 {object} map[string]string "Reason too short"
// @Failure 409 {object} map[string]string "Refund is not POSTED"
// @Security BearerAuth
// @Router /refunds/{id}/void [post]
func (h *refundHandler) voidRefund(c *gin.Context) {
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

	refund, reversal, err := h.refundService.VoidRefund(c.Request.Context(), caller, c.Param("id"), req.Reason)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to void refund")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"refund":  dto.ToRefundResponse(refund),
		"journal": dto.ToJournalResponse(reversal),
	})
}

// getRefund godoc
// @Summary Get a refund by ID
// @Tags refunds
// @Produce  json
// @Param   id path string true "Refund ID"
// @Success 200 {object} dto.RefundResponse
// @Failure 404 {object} map[string]string "Refund not found"
// @Security BearerAuth
// @Router /refunds/{id} [get]
func (h *refundHandler) getRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refund, err := h.refundService.GetRefundByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve refund")
		return
	}
	c.JSON(http.StatusOK, dto.ToRefundResponse(refund))
}
