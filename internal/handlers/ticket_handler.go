package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lottoroom/lottoroom-backend/internal/middleware"
	"github.com/lottoroom/lottoroom-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketHandler handles ticket and claim HTTP requests
type TicketHandler struct {
	settlement services.SettlementService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(settlement services.SettlementService) *TicketHandler {
	return &TicketHandler{settlement: settlement}
}

// BuyTicketRequest is the payload for POST /rooms/:id/tickets
type BuyTicketRequest struct {
	Number *int `json:"number" binding:"required"`
}

// BuyTicket handles POST /rooms/:id/tickets
func (h *TicketHandler) BuyTicket(c *gin.Context) {
	playerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request BuyTicketRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.settlement.BuyTicket(c.Request.Context(), playerID, roomID, *request.Number)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// ListRoundTickets handles GET /rooms/:id/tickets?round=N (round omitted
// or 0 means the current round)
func (h *TicketHandler) ListRoundTickets(c *gin.Context) {
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	round := int64(0)
	if raw := c.Query("round"); raw != "" {
		round, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || round < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round"})
			return
		}
	}

	tickets, err := h.settlement.GetRoundTickets(c.Request.Context(), roomID, round)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// MyTickets handles GET /rooms/:id/tickets/mine
func (h *TicketHandler) MyTickets(c *gin.Context) {
	playerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	tickets, err := h.settlement.GetPlayerTickets(c.Request.Context(), roomID, playerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// ClaimRequest is the payload for POST /rooms/:id/claims
type ClaimRequest struct {
	TicketIndex *int64 `json:"ticketIndex" binding:"required"`
}

// Claim handles POST /rooms/:id/claims
func (h *TicketHandler) Claim(c *gin.Context) {
	playerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request ClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.settlement.ClaimPrize(c.Request.Context(), playerID, roomID, *request.TicketIndex)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// ClaimStatus handles GET /rooms/:id/claims/:round/:index
func (h *TicketHandler) ClaimStatus(c *gin.Context) {
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	round, err := strconv.ParseInt(c.Param("round"), 10, 64)
	if err != nil || round < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round"})
		return
	}
	index, err := strconv.ParseInt(c.Param("index"), 10, 64)
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket index"})
		return
	}

	claim, claimed, err := h.settlement.GetClaimStatus(c.Request.Context(), roomID, round, index)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claimed": claimed, "claim": claim})
}

// MyStats handles GET /players/me/stats
func (h *TicketHandler) MyStats(c *gin.Context) {
	playerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	stats, err := h.settlement.GetPlayerStats(c.Request.Context(), playerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
