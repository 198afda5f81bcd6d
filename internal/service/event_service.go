package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/room-booking-api/internal/clock"
	"github.com/noah-isme/room-booking-api/internal/dto"
	"github.com/noah-isme/room-booking-api/internal/models"
	"github.com/noah-isme/room-booking-api/internal/repository"
	appErrors "github.com/noah-isme/room-booking-api/pkg/errors"
)

const (
	msgEventNotFound     = "Event not found."
	msgEventDuplicate    = "An event with this name already exists."
	msgStartAfterEnd     = "Start time must be before end time."
	msgInvalidDate       = "Invalid date format provided."
	msgRangeReversed     = "Start date must be before end date."
	msgCreateUnexpected  = "An unexpected error occurred while creating the event."
	msgEventCreated      = "Event created successfully"
	msgEventNameRequired = "Event name is required"

	defaultUpcomingLimit = 10
	maxUpcomingLimit     = 100
)

type eventStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, id int64, changes repository.EventChanges) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Event, error)
	LockByID(ctx context.Context, id int64) (*models.Event, error)
	FindByName(ctx context.Context, name string) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

type roomReader interface {
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	LockByID(ctx context.Context, id int64) (*models.Room, error)
}

type bookingNotifier interface {
	Notify(ctx context.Context, kind string, event models.Event)
}

// EventServiceConfig tunes listing limits.
type EventServiceConfig struct {
	DefaultUpcomingLimit int
	MaxUpcomingLimit     int
}

// EventService schedules events while keeping bookings of a room free of overlaps.
type EventService struct {
	events    eventStore
	rooms     roomReader
	cache     *CacheService
	notifier  bookingNotifier
	metrics   *MetricsService
	clock     clock.Clock
	cfg       EventServiceConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService builds an EventService. cache, notifier and metrics may be nil.
func NewEventService(
	events eventStore,
	rooms roomReader,
	cache *CacheService,
	notifier bookingNotifier,
	metrics *MetricsService,
	clk clock.Clock,
	cfg EventServiceConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *EventService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if cfg.DefaultUpcomingLimit <= 0 {
		cfg.DefaultUpcomingLimit = defaultUpcomingLimit
	}
	if cfg.MaxUpcomingLimit <= 0 {
		cfg.MaxUpcomingLimit = maxUpcomingLimit
	}
	if cfg.MaxUpcomingLimit < cfg.DefaultUpcomingLimit {
		cfg.MaxUpcomingLimit = cfg.DefaultUpcomingLimit
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:    events,
		rooms:     rooms,
		cache:     cache,
		notifier:  notifier,
		metrics:   metrics,
		clock:     clk,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// Create books a room. Checks run in order: payload shape, time parsing, interval order, name
// uniqueness, room existence, overlap. The last three run in one transaction holding the room lock.
func (s *EventService) Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventCreatedResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordBooking("create", OutcomeRejected)
		return nil, validationError(err, "invalid event payload")
	}
	start, err := parseTimestamp(req.StartTime)
	if err != nil {
		s.metrics.RecordBooking("create", OutcomeRejected)
		return nil, invalidInput("Start time must be a valid date string")
	}
	end, err := parseTimestamp(req.EndTime)
	if err != nil {
		s.metrics.RecordBooking("create", OutcomeRejected)
		return nil, invalidInput("End time must be a valid date string")
	}
	if !start.Before(end) {
		s.metrics.RecordBooking("create", OutcomeRejected)
		return nil, invalidInput(msgStartAfterEnd)
	}

	var created *models.Event
	var room *models.Room
	err = s.events.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.events.FindByName(ctx, req.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict(msgEventDuplicate)
		}

		room, err = s.rooms.LockByID(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return notFound(msgRoomNotFound)
		}

		if err := s.ensureFree(ctx, *room, start, end, 0); err != nil {
			return err
		}

		event := &models.Event{Name: req.Name, RoomID: room.ID, StartTime: start, EndTime: end}
		if err := s.events.Create(ctx, event); err != nil {
			return err
		}
		created, err = s.events.FindByID(ctx, event.ID)
		if err != nil {
			return err
		}
		if created == nil {
			return fmt.Errorf("reload event %d: %w", event.ID, sql.ErrNoRows)
		}
		return nil
	})
	if err != nil {
		err = s.classifyWriteError(ctx, err, room, start, end, 0)
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && !appErrors.IsKind(err, appErrors.ErrInternal) {
			s.recordRejection("create", err)
			return nil, appErr
		}
		s.metrics.RecordBooking("create", OutcomeError)
		s.logger.Error("create event failed", zap.String("name", req.Name), zap.Int64("room_id", req.RoomID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msgCreateUnexpected)
	}

	s.afterMutation(ctx, "create", models.BookingCreated, *created)
	return &dto.EventCreatedResponse{EventView: created.View(), Message: msgEventCreated}, nil
}

// Update applies a partial change. Whenever the room or either bound changes, the effective
// interval is validated and checked for overlaps in the effective room.
func (s *EventService) Update(ctx context.Context, id int64, req dto.UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordBooking("update", OutcomeRejected)
		return nil, validationError(err, "invalid event payload")
	}

	var (
		changes    repository.EventChanges
		updated    *models.Event
		room       *models.Room
		start, end time.Time
	)
	err := s.events.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.events.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return notFound(msgEventNotFound)
		}
		if changes, err = parseUpdateTimes(req); err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return invalidInput(msgEventNameRequired)
			}
			if name != current.Name {
				existing, err := s.events.FindByName(ctx, name)
				if err != nil {
					return err
				}
				if existing != nil && existing.ID != id {
					return conflict(msgEventDuplicate)
				}
				changes.Name = &name
			}
		}
		if req.RoomID != nil && *req.RoomID != current.RoomID {
			roomID := *req.RoomID
			changes.RoomID = &roomID
		}

		if changes.Reschedules() {
			start, end = current.StartTime, current.EndTime
			if changes.StartTime != nil {
				start = *changes.StartTime
			}
			if changes.EndTime != nil {
				end = *changes.EndTime
			}
			if !start.Before(end) {
				return invalidInput(msgStartAfterEnd)
			}

			roomID := current.RoomID
			if changes.RoomID != nil {
				roomID = *changes.RoomID
			}
			room, err = s.rooms.LockByID(ctx, roomID)
			if err != nil {
				return err
			}
			if room == nil {
				return notFound(msgRoomNotFound)
			}
			if err := s.ensureFree(ctx, *room, start, end, id); err != nil {
				return err
			}
		}

		if changes.Empty() {
			updated = current
			return nil
		}
		if err := s.events.Update(ctx, id, changes); err != nil {
			return err
		}
		updated, err = s.events.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if updated == nil {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		err = s.classifyWriteError(ctx, err, room, start, end, id)
		if errors.Is(err, sql.ErrNoRows) {
			err = notFound(msgEventNotFound)
		}
		if appErrors.IsKind(err, appErrors.ErrInternal) {
			s.metrics.RecordBooking("update", OutcomeError)
			s.logger.Error("update event failed", zap.Int64("event_id", id), zap.Error(err))
			return nil, err
		}
		s.recordRejection("update", err)
		return nil, err
	}

	if !changes.Empty() {
		s.afterMutation(ctx, "update", models.BookingUpdated, *updated)
	}
	return updated, nil
}

// Remove deletes an event by id and returns the deleted record.
func (s *EventService) Remove(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load event")
	}
	if event == nil {
		return nil, notFound(msgEventNotFound)
	}
	return s.delete(ctx, *event)
}

// CancelByName deletes the event carrying name.
func (s *EventService) CancelByName(ctx context.Context, name string) (*models.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput(msgEventNameRequired)
	}
	event, err := s.events.FindByName(ctx, name)
	if err != nil {
		return nil, internalError(err, "failed to load event")
	}
	if event == nil {
		return nil, notFound(msgEventNotFound)
	}
	return s.delete(ctx, *event)
}

func (s *EventService) delete(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := s.events.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(msgEventNotFound)
		}
		s.metrics.RecordBooking("cancel", OutcomeError)
		return nil, internalError(err, "failed to delete event")
	}
	s.afterMutation(ctx, "cancel", models.BookingCancelled, event)
	return &event, nil
}

// ListAll returns every event with its room, ordered by id.
func (s *EventService) ListAll(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.List(ctx, models.EventFilter{Order: models.OrderByID})
	if err != nil {
		return nil, internalError(err, "failed to list events")
	}
	return events, nil
}

// FindOne returns the event or nil when absent.
func (s *EventService) FindOne(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load event")
	}
	return event, nil
}

// FindByRoom lists the room's events by start time.
func (s *EventService) FindByRoom(ctx context.Context, roomID int64) ([]models.Event, error) {
	if _, err := s.requireRoom(ctx, roomID); err != nil {
		return nil, err
	}

	key, cached := s.cache.RoomKey(ctx, roomEventsCacheKey(roomID))
	var events []models.Event
	if cached && s.cache.Get(ctx, key, &events) {
		return events, nil
	}
	events, err := s.events.List(ctx, models.EventFilter{RoomID: roomID, Order: models.OrderByStart})
	if err != nil {
		return nil, internalError(err, "failed to list room events")
	}
	if cached {
		s.cache.Set(ctx, key, events)
	}
	return events, nil
}

// FindActiveBetween lists events intersecting [start, end) ordered by start time and room.
func (s *EventService) FindActiveBetween(ctx context.Context, rawStart, rawEnd string) ([]models.Event, error) {
	start, end, err := parseQueryRange(rawStart, rawEnd)
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, models.EventFilter{
		StartsBefore: &end,
		EndsAfter:    &start,
		Order:        models.OrderByStartAndRoom,
	})
	if err != nil {
		return nil, internalError(err, "failed to list events")
	}
	return events, nil
}

// FindCurrentlyActive lists events with start <= now < end.
func (s *EventService) FindCurrentlyActive(ctx context.Context) ([]models.Event, error) {
	now := s.clock.Now()
	events, err := s.events.List(ctx, models.EventFilter{
		StartsAtOrBefore: &now,
		EndsAfter:        &now,
		Order:            models.OrderByStartAndRoom,
	})
	if err != nil {
		return nil, internalError(err, "failed to list active events")
	}
	return events, nil
}

// FindUpcoming lists events starting after now. Non-positive limits fall back to the default and
// large ones are capped.
func (s *EventService) FindUpcoming(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultUpcomingLimit
	}
	if limit > s.cfg.MaxUpcomingLimit {
		limit = s.cfg.MaxUpcomingLimit
	}
	now := s.clock.Now()
	events, err := s.events.List(ctx, models.EventFilter{
		StartsAfter: &now,
		Order:       models.OrderByStart,
		Limit:       limit,
	})
	if err != nil {
		return nil, internalError(err, "failed to list upcoming events")
	}
	return events, nil
}

// GetRoomAvailability reports whether the room is free over [start, end).
func (s *EventService) GetRoomAvailability(ctx context.Context, roomID int64, rawStart, rawEnd string) (*models.Availability, error) {
	room, err := s.requireRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	start, end, err := parseQueryRange(rawStart, rawEnd)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.events.List(ctx, models.OverlapFilter(roomID, start, end, 0))
	if err != nil {
		return nil, internalError(err, "failed to check room availability")
	}
	return &models.Availability{
		Room:               *room,
		RequestedTimeRange: models.TimeRange{Start: start, End: end},
		IsAvailable:        len(conflicts) == 0,
		ConflictingEvents:  conflicts,
	}, nil
}

func (s *EventService) requireRoom(ctx context.Context, roomID int64) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, internalError(err, "failed to load room")
	}
	if room == nil {
		return nil, notFound(msgRoomNotFound)
	}
	return room, nil
}

// ensureFree fails with an overlap Conflict naming the earliest event of room intersecting
// [start, end), ignoring excludeID.
func (s *EventService) ensureFree(ctx context.Context, room models.Room, start, end time.Time, excludeID int64) error {
	filter := models.OverlapFilter(room.ID, start, end, excludeID)
	filter.Limit = 1
	conflicts, err := s.events.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return overlapConflict(conflicts[0], room)
	}
	return nil
}

func overlapConflict(existing models.Event, room models.Room) error {
	return conflict(fmt.Sprintf(
		"Event overlaps with existing event \"%s\" in room \"%s\". Conflicting time: %s - %s",
		existing.Name, room.Name, models.FormatTimestamp(existing.StartTime), models.FormatTimestamp(existing.EndTime),
	))
}

// classifyWriteError maps transaction failures onto API errors. Constraint violations raised by
// the database after the pre-checks passed are reported like the pre-checks would have.
func (s *EventService) classifyWriteError(ctx context.Context, err error, room *models.Room, start, end time.Time, excludeID int64) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrDuplicate):
		return conflict(msgEventDuplicate)
	case errors.Is(err, repository.ErrReferenced):
		return notFound(msgRoomNotFound)
	case errors.Is(err, repository.ErrOverlap):
		if room != nil {
			if checkErr := s.ensureFree(ctx, *room, start, end, excludeID); appErrors.IsKind(checkErr, appErrors.ErrConflict) {
				return checkErr
			}
			return conflict(fmt.Sprintf("Event overlaps with an existing event in room \"%s\".", room.Name))
		}
		return conflict("Event overlaps with an existing event.")
	case errors.Is(err, sql.ErrNoRows):
		return err
	default:
		return internalError(err, "failed to save event")
	}
}

func (s *EventService) recordRejection(operation string, err error) {
	outcome := OutcomeRejected
	if appErrors.IsKind(err, appErrors.ErrConflict) {
		outcome = OutcomeConflict
		s.logger.Info("booking conflict", zap.String("operation", operation), zap.String("reason", appErrors.FromError(err).Message))
	}
	s.metrics.RecordBooking(operation, outcome)
}

func (s *EventService) afterMutation(ctx context.Context, operation, kind string, event models.Event) {
	s.metrics.RecordBooking(operation, OutcomeSuccess)
	s.cache.InvalidateRooms(ctx)
	if s.notifier != nil {
		s.notifier.Notify(ctx, kind, event)
	}
	s.logger.Info("booking "+operation,
		zap.Int64("event_id", event.ID),
		zap.Int64("room_id", event.RoomID),
		zap.String("name", event.Name))
}

func parseQueryRange(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, end, err := parseRange(rawStart, rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, invalidInput(msgInvalidDate)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, invalidInput(msgRangeReversed)
	}
	return start, end, nil
}

// parseUpdateTimes reads the supplied bounds of a partial update. When both are supplied they must
// be ordered.
func parseUpdateTimes(req dto.UpdateEventRequest) (repository.EventChanges, error) {
	changes := repository.EventChanges{}
	if req.StartTime != nil {
		start, err := parseTimestamp(*req.StartTime)
		if err != nil {
			return changes, invalidInput("Start time must be a valid date string")
		}
		changes.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := parseTimestamp(*req.EndTime)
		if err != nil {
			return changes, invalidInput("End time must be a valid date string")
		}
		changes.EndTime = &end
	}
	if changes.StartTime != nil && changes.EndTime != nil && !changes.StartTime.Before(*changes.EndTime) {
		return changes, invalidInput(msgStartAfterEnd)
	}
	return changes, nil
}
