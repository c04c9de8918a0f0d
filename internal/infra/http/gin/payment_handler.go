package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hems/internal/app/commands"
	"hems/internal/app/dto"
	paymentapp "hems/internal/app/handlers/payment"
	"hems/internal/app/queries"
	domainuser "hems/internal/domain/user"
)

type PaymentHTTP interface {
	Record(c *gin.Context)
	Void(c *gin.Context)
	List(c *gin.Context)
}

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type recordPaymentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (h PaymentHandler) Record(c *gin.Context) {
	if _, ok := requireRole(c, domainuser.RoleStaff); !ok {
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := paymentapp.RecordPaymentCommand{
		CommandID:       generateCommandID(),
		BookingID:       c.Param("id"),
		Amount:          req.Amount,
		Currency:        req.Currency,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[paymentapp.RecordPaymentCommand, *paymentapp.RecordPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PaymentHandler) Void(c *gin.Context) {
	if _, ok := requireRole(c, domainuser.RoleStaff); !ok {
		return
	}
	cmd := paymentapp.VoidPaymentCommand{PaymentID: c.Param("paymentID")}
	result, err := commands.Dispatch[paymentapp.VoidPaymentCommand, *paymentapp.VoidPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) List(c *gin.Context) {
	if _, ok := requireRole(c, domainuser.RoleStaff); !ok {
		return
	}
	result, err := queries.Ask[paymentapp.ListPaymentsQuery, dto.PaymentCollection](c.Request.Context(), h.Queries, paymentapp.ListPaymentsQuery{BookingID: c.Param("id")})
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentHandler{}
