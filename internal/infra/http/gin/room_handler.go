package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"hems/internal/app/commands"
	"hems/internal/app/dto"
	roomapp "hems/internal/app/handlers/room"
	"hems/internal/app/queries"
	domainuser "hems/internal/domain/user"
)

type RoomHTTP interface {
	Register(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Availability(c *gin.Context)
	StartMaintenance(c *gin.Context)
	EndMaintenance(c *gin.Context)
	ChangeRate(c *gin.Context)
}

type RoomHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type registerRoomRequest struct {
	Number   string `json:"number"`
	Type     string `json:"type"`
	Rate     int64  `json:"rate"`
	Currency string `json:"currency"`
}

func (h RoomHandler) Register(c *gin.Context) {
	if _, ok := requireRole(c, domainuser.RoleStaff); !ok {
		return
	}
	var req registerRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := roomapp.RegisterRoomCommand{
		CommandID: generateCommandID(),
		Number:    req.Number,
		Type:      req.Type,
		Rate:      req.Rate,
		Currency:  req.Currency,
	}
	result, err := commands.Dispatch[roomapp.RegisterRoomCommand, *roomapp.RegisterRoomResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RoomHandler) List(c *gin.Context) {
	result, err := queries.Ask[roomapp.ListRoomsQuery, dto.RoomCollection](c.Request.Context(), h.Queries, roomapp.ListRoomsQuery{})
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) Get(c *gin.Context) {
	result, err := queries.Ask[roomapp.GetRoomQuery, dto.RoomSummary](c.Request.Context(), h.Queries, roomapp.GetRoomQuery{RoomID: c.Param("id")})
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) Availability(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start: expected RFC3339"})
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}
	query := roomapp.RoomAvailabilityQuery{RoomID: c.Param("id"), Start: start, Days: days}
	result, askErr := queries.Ask[roomapp.RoomAvailabilityQuery, dto.RoomAvailability](c.Request.Context(), h.Queries, query)
	if askErr != nil {
		respondDomainError(c, h.Logger, askErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) StartMaintenance(c *gin.Context) {
	if _, ok := requireRole(c, domainuser.RoleStaff); !ok {
		return
	}
	cmd := roomapp.StartMaintenanceCommand{RoomID: c.Param("id")}
	result, err := commands.Dispatch[roomapp.StartMaintenanceCommand, *roomapp.MaintenanceResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) EndMaintenance(c *gin.Context) {
	if _, ok := requireRole(c, domainuser.RoleStaff); !ok {
		return
	}
	cmd := roomapp.EndMaintenanceCommand{RoomID: c.Param("id")}
	result, err := commands.Dispatch[roomapp.EndMaintenanceCommand, *roomapp.MaintenanceResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type changeRateRequest struct {
	Rate     int64  `json:"rate"`
	Currency string `json:"currency"`
}

func (h RoomHandler) ChangeRate(c *gin.Context) {
	if _, ok := requireRole(c, domainuser.RoleStaff); !ok {
		return
	}
	var req changeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := roomapp.ChangeRateCommand{RoomID: c.Param("id"), Rate: req.Rate, Currency: req.Currency}
	result, err := commands.Dispatch[roomapp.ChangeRateCommand, *roomapp.ChangeRateResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ RoomHTTP = RoomHandler{}
