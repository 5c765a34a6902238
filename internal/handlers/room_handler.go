package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lottoroom/lottoroom-backend/internal/middleware"
	"github.com/lottoroom/lottoroom-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoomHandler handles room lifecycle HTTP requests
type RoomHandler struct {
	settlement services.SettlementService
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(settlement services.SettlementService) *RoomHandler {
	return &RoomHandler{settlement: settlement}
}

// CreateRoomRequest is the payload for POST /rooms. RoomId is optional
// and client-generated so the commitment can bind the room identity.
type CreateRoomRequest struct {
	RoomID      string    `json:"roomId"`
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	EntryFee    int64     `json:"entryFee" binding:"required"`
	DrawTime    time.Time `json:"drawTime" binding:"required"`
	Commitment  string    `json:"commitment" binding:"required"`
}

// CreateRoom handles POST /rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	operatorID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var request CreateRoomRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := services.CreateRoomParams{
		Name:        request.Name,
		Description: request.Description,
		EntryFee:    request.EntryFee,
		DrawTime:    request.DrawTime,
		Commitment:  request.Commitment,
	}
	if request.RoomID != "" {
		id, err := primitive.ObjectIDFromHex(request.RoomID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID format"})
			return
		}
		params.RoomID = id
	}

	room, err := h.settlement.CreateRoom(c.Request.Context(), operatorID, params)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /rooms
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.settlement.ListRooms(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom handles GET /rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	room, err := h.settlement.GetRoom(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// RevealRequest is the payload for POST /rooms/:id/reveal
type RevealRequest struct {
	Number int    `json:"number"`
	Secret string `json:"secret" binding:"required"`
}

// Reveal handles POST /rooms/:id/reveal
func (h *RoomHandler) Reveal(c *gin.Context) {
	operatorID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request RevealRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.settlement.RevealWinningNumber(c.Request.Context(), operatorID, id, request.Number, request.Secret)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ResetRequest is the payload for POST /rooms/:id/reset
type ResetRequest struct {
	DrawTime   time.Time `json:"drawTime" binding:"required"`
	Commitment string    `json:"commitment" binding:"required"`
}

// Reset handles POST /rooms/:id/reset
func (h *RoomHandler) Reset(c *gin.Context) {
	operatorID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request ResetRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.settlement.ResetRoom(c.Request.Context(), operatorID, id, request.DrawTime, request.Commitment)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ForceClose handles POST /rooms/:id/close
func (h *RoomHandler) ForceClose(c *gin.Context) {
	operatorID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	room, err := h.settlement.ForceCloseRoom(c.Request.Context(), operatorID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
