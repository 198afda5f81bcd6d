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

type eventService interface {
	Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventCreatedResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateEventRequest) (*models.Event, error)
	Remove(ctx context.Context, id int64) (*models.Event, error)
	CancelByName(ctx context.Context, name string) (*models.Event, error)
	ListAll(ctx context.Context) ([]models.Event, error)
	FindOne(ctx context.Context, id int64) (*models.Event, error)
	FindByRoom(ctx context.Context, roomID int64) ([]models.Event, error)
	FindActiveBetween(ctx context.Context, rawStart, rawEnd string) ([]models.Event, error)
	FindCurrentlyActive(ctx context.Context) ([]models.Event, error)
	FindUpcoming(ctx context.Context, limit int) ([]models.Event, error)
	GetRoomAvailability(ctx context.Context, roomID int64, rawStart, rawEnd string) (*models.Availability, error)
}

type eventExporter interface {
	Export(ctx context.Context, format string, query dto.EventRangeQuery) (*dto.ExportFile, error)
}

// EventHandler exposes the event scheduling endpoints.
type EventHandler struct {
	service  eventService
	exporter eventExporter
}

// NewEventHandler builds a new handler.
func NewEventHandler(service eventService, exporter eventExporter) *EventHandler {
	return &EventHandler{service: service, exporter: exporter}
}

// Create godoc
// @Summary Book a room
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} dto.EventCreatedResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List events, optionally restricted to a time window
// @Tags Events
// @Produce json
// @Param start query string false "Window start (ISO-8601)"
// @Param end query string false "Window end (ISO-8601)"
// @Success 200 {array} models.EventView
// @Failure 400 {object} response.ErrorBody
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	query := rangeQuery(c)

	var (
		events []models.Event
		err    error
	)
	if query.Complete() {
		events, err = h.service.FindActiveBetween(c.Request.Context(), query.Start, query.End)
	} else {
		events, err = h.service.ListAll(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events)
}

// Active godoc
// @Summary List events running now
// @Tags Events
// @Produce json
// @Success 200 {array} models.EventView
// @Router /events/active [get]
func (h *EventHandler) Active(c *gin.Context) {
	events, err := h.service.FindCurrentlyActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events)
}

// Upcoming godoc
// @Summary List the next events to start
// @Tags Events
// @Produce json
// @Param limit query int false "Maximum number of events" default(10)
// @Success 200 {array} models.EventView
// @Router /events/upcoming [get]
func (h *EventHandler) Upcoming(c *gin.Context) {
	events, err := h.service.FindUpcoming(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events)
}

// ByRoom godoc
// @Summary List a room's events
// @Tags Events
// @Produce json
// @Param roomId path int true "Room ID"
// @Success 200 {array} models.EventView
// @Failure 404 {object} response.ErrorBody
// @Router /events/room/{roomId} [get]
func (h *EventHandler) ByRoom(c *gin.Context) {
	roomID, err := paramID(c, "roomId")
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.service.FindByRoom(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events)
}

// Availability godoc
// @Summary Check whether a room is free over a window
// @Tags Events
// @Produce json
// @Param roomId path int true "Room ID"
// @Param start query string true "Window start (ISO-8601)"
// @Param end query string true "Window end (ISO-8601)"
// @Success 200 {object} models.Availability
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /events/availability/{roomId} [get]
func (h *EventHandler) Availability(c *gin.Context) {
	roomID, err := paramID(c, "roomId")
	if err != nil {
		response.Error(c, err)
		return
	}
	availability, err := h.service.GetRoomAvailability(c.Request.Context(), roomID, c.Query("start"), c.Query("end"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, availability)
}

// Export godoc
// @Summary Download events as CSV or PDF
// @Tags Events
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param start query string false "Window start (ISO-8601)"
// @Param end query string false "Window end (ISO-8601)"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /events/export [get]
func (h *EventHandler) Export(c *gin.Context) {
	file, err := h.exporter.Export(c.Request.Context(), c.Query("format"), rangeQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}

// Get godoc
// @Summary Get an event, or null when it does not exist
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventView
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.FindOne(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// Update godoc
// @Summary Partially update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} models.EventView
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// Delete godoc
// @Summary Delete an event by id
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventView
// @Failure 404 {object} response.ErrorBody
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Remove(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// CancelByName godoc
// @Summary Cancel an event by its name
// @Tags Events
// @Produce json
// @Param name query string true "Event name"
// @Success 200 {object} models.EventView
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /events [delete]
func (h *EventHandler) CancelByName(c *gin.Context) {
	event, err := h.service.CancelByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}
