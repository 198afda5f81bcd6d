package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/room-booking-api/internal/dto"
	"github.com/noah-isme/room-booking-api/internal/models"
	appErrors "github.com/noah-isme/room-booking-api/pkg/errors"
	"github.com/noah-isme/room-booking-api/pkg/response"
)

type roomService interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (*models.Room, error)
	Get(ctx context.Context, id int64) (*models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
	ListWithEvents(ctx context.Context) ([]models.RoomSchedule, error)
	Delete(ctx context.Context, id int64) (*models.Room, error)
}

// RoomHandler exposes the room directory.
type RoomHandler struct {
	service roomService
}

// NewRoomHandler builds a new handler.
func NewRoomHandler(service roomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// Create godoc
// @Summary Register a room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body dto.CreateRoomRequest true "Room payload"
// @Success 201 {object} models.Room
// @Failure 400 {object} response.ErrorBody
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload"))
		return
	}
	room, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Param include query string false "Set to events to embed each room's events"
// @Success 200 {array} models.Room
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	if c.Query("include") == "events" {
		schedules, err := h.service.ListWithEvents(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, schedules)
		return
	}

	rooms, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rooms)
}

// Get godoc
// @Summary Get a room
// @Tags Rooms
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} models.Room
// @Failure 404 {object} response.ErrorBody
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	room, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, room)
}

// Delete godoc
// @Summary Delete a room without events
// @Tags Rooms
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} models.Room
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	room, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, room)
}
