package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hems/internal/app/middleware"
	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/money"
	"hems/internal/domain/shared/stay"
)

// respondDomainError maps domain errors onto HTTP statuses. Anything not
// in the taxonomy is a 500 with the detail kept out of the response body.
func respondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domainroom.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainpayment.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainroom.ErrRoomUnavailable),
		errors.Is(err, domainroom.ErrRoomBusy),
		errors.Is(err, domainroom.ErrNumberTaken),
		errors.Is(err, domainroom.ErrNotInService),
		errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, domainbooking.ErrBalanceDue),
		errors.Is(err, domainpayment.ErrAlreadyVoided),
		errors.Is(err, middleware.ErrTxConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, stay.ErrInvalidStart),
		errors.Is(err, stay.ErrInvalidDays),
		errors.Is(err, domainbooking.ErrUserRequired),
		errors.Is(err, domainbooking.ErrStartInPast),
		errors.Is(err, domainroom.ErrNumberRequired),
		errors.Is(err, domainroom.ErrTypeRequired),
		errors.Is(err, domainroom.ErrNegativeRate),
		errors.Is(err, domainpayment.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, money.ErrCurrencyMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", "error", err, "path", c.FullPath())
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
