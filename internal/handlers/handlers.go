package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lottoroom/lottoroom-backend/internal/services"
)

// writeServiceError maps settlement errors onto HTTP statuses. Unknown
// errors become 500 without leaking internals.
func writeServiceError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrInvalidRoom):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidNumber),
		errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrInvalidVerification):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidOwner):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInsufficientAllowance):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidTicket),
		errors.Is(err, services.ErrAlreadyRevealed),
		errors.Is(err, services.ErrRoomNotResettable),
		errors.Is(err, services.ErrGracePeriodNotPassed),
		errors.Is(err, services.ErrRoomFull):
		status = http.StatusConflict
	case errors.Is(err, services.ErrPaused):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrTransferFailed):
		status = http.StatusBadGateway
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
