package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lottoroom/lottoroom-backend/internal/middleware"
	"github.com/lottoroom/lottoroom-backend/internal/services"
)

// AdminHandler handles platform administration HTTP requests
type AdminHandler struct {
	settlement services.SettlementService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(settlement services.SettlementService) *AdminHandler {
	return &AdminHandler{settlement: settlement}
}

// Pause handles POST /admin/pause
func (h *AdminHandler) Pause(c *gin.Context) {
	operatorID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	if err := h.settlement.EmergencyPause(c.Request.Context(), operatorID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

// Resume handles POST /admin/resume
func (h *AdminHandler) Resume(c *gin.Context) {
	operatorID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	if err := h.settlement.ResumeOperations(c.Request.Context(), operatorID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

// WithdrawRequest is the payload for POST /admin/fees/withdraw. A zero or
// omitted amount withdraws everything available.
type WithdrawRequest struct {
	Amount int64 `json:"amount"`
}

// WithdrawFees handles POST /admin/fees/withdraw
func (h *AdminHandler) WithdrawFees(c *gin.Context) {
	operatorID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var request WithdrawRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := h.settlement.WithdrawFees(c.Request.Context(), operatorID, request.Amount)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": amount})
}

// SetFeeRecipientRequest is the payload for PUT /admin/fees/recipient
type SetFeeRecipientRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

// SetFeeRecipient handles PUT /admin/fees/recipient
func (h *AdminHandler) SetFeeRecipient(c *gin.Context) {
	operatorID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var request SetFeeRecipientRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settlement.SetFeeRecipient(c.Request.Context(), operatorID, request.Recipient); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipient": request.Recipient})
}

// FeeAccount handles GET /admin/fees
func (h *AdminHandler) FeeAccount(c *gin.Context) {
	account, err := h.settlement.GetFeeAccount(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// Status handles GET /status
func (h *AdminHandler) Status(c *gin.Context) {
	paused, err := h.settlement.IsPaused(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": paused})
}
