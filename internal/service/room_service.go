package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/room-booking-api/internal/dto"
	"github.com/noah-isme/room-booking-api/internal/models"
	"github.com/noah-isme/room-booking-api/internal/repository"
	appErrors "github.com/noah-isme/room-booking-api/pkg/errors"
)

const (
	msgRoomNotFound  = "Room not found."
	msgRoomDuplicate = "A room with this name already exists."
	msgRoomInUse     = "Room still has scheduled events."
)

type roomStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, name string) (*models.Room, error)
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	FindByName(ctx context.Context, name string) (*models.Room, error)
	LockByID(ctx context.Context, id int64) (*models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
	Delete(ctx context.Context, id int64) error
}

type eventLister interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// RoomService manages the room directory.
type RoomService struct {
	rooms     roomStore
	events    eventLister
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService builds a RoomService. cache may be nil.
func NewRoomService(rooms roomStore, events eventLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{rooms: rooms, events: events, cache: cache, validator: validate, logger: logger}
}

// Create registers a room with a unique name.
func (s *RoomService) Create(ctx context.Context, req dto.CreateRoomRequest) (*models.Room, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload")
	}

	existing, err := s.rooms.FindByName(ctx, req.Name)
	if err != nil {
		return nil, internalError(err, "failed to check room name")
	}
	if existing != nil {
		return nil, conflict(msgRoomDuplicate)
	}

	room, err := s.rooms.Create(ctx, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(msgRoomDuplicate)
		}
		return nil, internalError(err, "failed to create room")
	}
	s.cache.InvalidateRooms(ctx)
	s.logger.Info("room created", zap.Int64("room_id", room.ID), zap.String("name", room.Name))
	return room, nil
}

// Get returns the room or NotFound.
func (s *RoomService) Get(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load room")
	}
	if room == nil {
		return nil, notFound(msgRoomNotFound)
	}
	return room, nil
}

// List returns every room ordered by id.
func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	key, cached := s.cache.RoomKey(ctx, roomListCacheKey)
	var rooms []models.Room
	if cached && s.cache.Get(ctx, key, &rooms) {
		return rooms, nil
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list rooms")
	}
	if cached {
		s.cache.Set(ctx, key, rooms)
	}
	return rooms, nil
}

// ListWithEvents returns every room with its events ordered by start time.
func (s *RoomService) ListWithEvents(ctx context.Context) ([]models.RoomSchedule, error) {
	key, cached := s.cache.RoomKey(ctx, roomScheduleCacheKey)
	var schedules []models.RoomSchedule
	if cached && s.cache.Get(ctx, key, &schedules) {
		return schedules, nil
	}

	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list rooms")
	}
	events, err := s.events.List(ctx, models.EventFilter{Order: models.OrderByStart})
	if err != nil {
		return nil, internalError(err, "failed to list events")
	}

	byRoom := make(map[int64][]models.Event, len(rooms))
	for _, event := range events {
		event.Room = nil
		byRoom[event.RoomID] = append(byRoom[event.RoomID], event)
	}
	schedules = make([]models.RoomSchedule, 0, len(rooms))
	for _, room := range rooms {
		roomEvents := byRoom[room.ID]
		if roomEvents == nil {
			roomEvents = []models.Event{}
		}
		schedules = append(schedules, models.RoomSchedule{Room: room, Events: roomEvents})
	}
	if cached {
		s.cache.Set(ctx, key, schedules)
	}
	return schedules, nil
}

// Delete removes a room that has no events.
func (s *RoomService) Delete(ctx context.Context, id int64) (*models.Room, error) {
	var deleted *models.Room
	err := s.rooms.WithTx(ctx, func(ctx context.Context) error {
		room, err := s.rooms.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if room == nil {
			return notFound(msgRoomNotFound)
		}
		booked, err := s.events.List(ctx, models.EventFilter{RoomID: id, Limit: 1})
		if err != nil {
			return err
		}
		if len(booked) > 0 {
			return conflict(msgRoomInUse)
		}
		if err := s.rooms.Delete(ctx, id); err != nil {
			return err
		}
		deleted = room
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, repository.ErrReferenced):
			return nil, conflict(msgRoomInUse)
		case errors.Is(err, sql.ErrNoRows):
			return nil, notFound(msgRoomNotFound)
		default:
			return nil, internalError(err, "failed to delete room")
		}
	}
	s.cache.InvalidateRooms(ctx)
	s.logger.Info("room deleted", zap.Int64("room_id", deleted.ID))
	return deleted, nil
}
