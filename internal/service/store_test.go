package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/room-booking-api/internal/models"
	"github.com/noah-isme/room-booking-api/internal/repository"
)

// memStore is an in-memory booking store. Room locks taken inside WithTx are held until the
// transaction function returns, mirroring SELECT ... FOR UPDATE.
type memStore struct {
	mu          sync.Mutex
	rooms       map[int64]models.Room
	events      map[int64]models.Event
	roomLocks   map[int64]*sync.Mutex
	nextRoomID  int64
	nextEventID int64

	createErr error
	listErr   error
	listCalls int
	// afterList runs once a List call has read its rows, outside the store lock.
	afterList func()
}

type memTxKey struct{}

type memTx struct {
	held []*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		rooms:     map[int64]models.Room{},
		events:    map[int64]models.Event{},
		roomLocks: map[int64]*sync.Mutex{},
	}
}

func (m *memStore) roomsRepo() *memRooms   { return &memRooms{m} }
func (m *memStore) eventsRepo() *memEvents { return &memEvents{m} }

func (m *memStore) addRoom(name string) models.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRoomID++
	room := models.Room{ID: m.nextRoomID, Name: name}
	m.rooms[room.ID] = room
	return room
}

func (m *memStore) addEvent(name string, roomID int64, start, end time.Time) models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEventID++
	event := models.Event{ID: m.nextEventID, Name: name, RoomID: roomID, StartTime: start, EndTime: end}
	m.events[event.ID] = event
	return event
}

func (m *memStore) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}
	tx := &memTx{}
	err := fn(context.WithValue(ctx, memTxKey{}, tx))
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	return err
}

func (m *memStore) lockRoom(ctx context.Context, id int64) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return
	}
	m.mu.Lock()
	lock, exists := m.roomLocks[id]
	if !exists {
		lock = &sync.Mutex{}
		m.roomLocks[id] = lock
	}
	m.mu.Unlock()
	lock.Lock()
	tx.held = append(tx.held, lock)
}

// joined must be called with m.mu held.
func (m *memStore) joined(event models.Event) models.Event {
	room := m.rooms[event.RoomID]
	event.Room = &room
	return event
}

// violates emulates the unique and exclusion constraints. Must be called with m.mu held.
func (m *memStore) violates(candidate models.Event) error {
	for _, other := range m.events {
		if other.ID == candidate.ID {
			continue
		}
		if other.Name == candidate.Name {
			return repository.ErrDuplicate
		}
		if other.RoomID == candidate.RoomID && other.Overlaps(candidate.StartTime, candidate.EndTime) {
			return repository.ErrOverlap
		}
	}
	if _, ok := m.rooms[candidate.RoomID]; !ok {
		return repository.ErrReferenced
	}
	return nil
}

type memRooms struct{ *memStore }

func (r *memRooms) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.withTx(ctx, fn)
}

func (r *memRooms) Create(ctx context.Context, name string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.Name == name {
			return nil, repository.ErrDuplicate
		}
	}
	r.nextRoomID++
	room := models.Room{ID: r.nextRoomID, Name: name}
	r.rooms[room.ID] = room
	return &room, nil
}

func (r *memRooms) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (r *memRooms) FindByName(ctx context.Context, name string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.Name == name {
			room := room
			return &room, nil
		}
	}
	return nil, nil
}

func (r *memRooms) LockByID(ctx context.Context, id int64) (*models.Room, error) {
	r.lockRoom(ctx, id)
	return r.FindByID(ctx, id)
}

func (r *memRooms) List(ctx context.Context) ([]models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms := make([]models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (r *memRooms) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return sql.ErrNoRows
	}
	for _, event := range r.events {
		if event.RoomID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.rooms, id)
	return nil
}

type memEvents struct{ *memStore }

func (e *memEvents) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return e.withTx(ctx, fn)
}

func (e *memEvents) Create(ctx context.Context, event *models.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.createErr != nil {
		return e.createErr
	}
	candidate := *event
	candidate.ID = e.nextEventID + 1
	candidate.Room = nil
	if err := e.violates(candidate); err != nil {
		return err
	}
	e.nextEventID++
	e.events[candidate.ID] = candidate
	event.ID = candidate.ID
	return nil
}

func (e *memEvents) Update(ctx context.Context, id int64, changes repository.EventChanges) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	event, ok := e.events[id]
	if !ok {
		return sql.ErrNoRows
	}
	if changes.Name != nil {
		event.Name = *changes.Name
	}
	if changes.RoomID != nil {
		event.RoomID = *changes.RoomID
	}
	if changes.StartTime != nil {
		event.StartTime = *changes.StartTime
	}
	if changes.EndTime != nil {
		event.EndTime = *changes.EndTime
	}
	if err := e.violates(event); err != nil {
		return err
	}
	e.events[id] = event
	return nil
}

func (e *memEvents) Delete(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(e.events, id)
	return nil
}

func (e *memEvents) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	event, ok := e.events[id]
	if !ok {
		return nil, nil
	}
	joined := e.joined(event)
	return &joined, nil
}

func (e *memEvents) LockByID(ctx context.Context, id int64) (*models.Event, error) {
	return e.FindByID(ctx, id)
}

func (e *memEvents) FindByName(ctx context.Context, name string) (*models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, event := range e.events {
		if event.Name == name {
			joined := e.joined(event)
			return &joined, nil
		}
	}
	return nil, nil
}

func (e *memEvents) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	out, err := e.list(filter)
	if e.afterList != nil {
		e.afterList()
	}
	return out, err
}

func (e *memEvents) list(filter models.EventFilter) ([]models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listCalls++
	if e.listErr != nil {
		return nil, e.listErr
	}

	out := []models.Event{}
	for _, event := range e.events {
		switch {
		case filter.RoomID > 0 && event.RoomID != filter.RoomID,
			filter.ExcludeID > 0 && event.ID == filter.ExcludeID,
			filter.StartsBefore != nil && !event.StartTime.Before(*filter.StartsBefore),
			filter.StartsAtOrBefore != nil && event.StartTime.After(*filter.StartsAtOrBefore),
			filter.StartsAfter != nil && !event.StartTime.After(*filter.StartsAfter),
			filter.EndsAfter != nil && !event.EndTime.After(*filter.EndsAfter):
			continue
		}
		out = append(out, e.joined(event))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch filter.Order {
		case models.OrderByStart:
			if !a.StartTime.Equal(b.StartTime) {
				return a.StartTime.Before(b.StartTime)
			}
		case models.OrderByStartAndRoom:
			if !a.StartTime.Equal(b.StartTime) {
				return a.StartTime.Before(b.StartTime)
			}
			if a.RoomID != b.RoomID {
				return a.RoomID < b.RoomID
			}
		}
		return a.ID < b.ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type notifierStub struct {
	mu    sync.Mutex
	kinds []string
	names []string
}

func (n *notifierStub) Notify(ctx context.Context, kind string, event models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	n.names = append(n.names, event.Name)
}
