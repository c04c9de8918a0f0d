package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hems/internal/app/commands"
	"hems/internal/app/dto"
	bookingapp "hems/internal/app/handlers/booking"
	"hems/internal/app/queries"
	domainuser "hems/internal/domain/user"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	RoomID string    `json:"room_id"`
	Start  time.Time `json:"start"`
	Days   int       `json:"days"`
	UserID string    `json:"user_id"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Guests always book for themselves; staff may book on behalf of a guest.
	userID := user.ID
	if req.UserID != "" && user.HasRole(domainuser.RoleStaff) {
		userID = req.UserID
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:       generateCommandID(),
		UserID:          userID,
		RoomID:          req.RoomID,
		Start:           req.Start,
		Days:            req.Days,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.canManage(c, user, id) {
		return
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: id}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.BookingTransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Complete(c *gin.Context) {
	if _, ok := requireRole(c, domainuser.RoleStaff); !ok {
		return
	}
	cmd := bookingapp.CompleteBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, *bookingapp.BookingTransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	summary, err := queries.Ask[bookingapp.GetBookingQuery, dto.BookingSummary](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{BookingID: c.Param("id")})
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	if summary.UserID != user.ID && !user.HasRole(domainuser.RoleStaff) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h BookingHandler) List(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := bookingapp.ListBookingsQuery{
		UserID: c.Query("user_id"),
		RoomID: c.Query("room_id"),
		Status: c.Query("status"),
	}
	// Guests only ever see their own bookings.
	if !user.HasRole(domainuser.RoleStaff) {
		query.UserID = user.ID
	}
	result, err := queries.Ask[bookingapp.ListBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// canManage lets staff act on any booking and guests only on their own.
func (h BookingHandler) canManage(c *gin.Context, user principal, bookingID string) bool {
	if user.HasRole(domainuser.RoleStaff) {
		return true
	}
	summary, err := queries.Ask[bookingapp.GetBookingQuery, dto.BookingSummary](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{BookingID: bookingID})
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return false
	}
	if summary.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return false
	}
	return true
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
