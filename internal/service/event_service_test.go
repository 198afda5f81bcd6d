package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/room-booking-api/internal/clock"
	"github.com/noah-isme/room-booking-api/internal/dto"
	"github.com/noah-isme/room-booking-api/internal/models"
	"github.com/noah-isme/room-booking-api/internal/repository"
	appErrors "github.com/noah-isme/room-booking-api/pkg/errors"
)

type eventFixture struct {
	store    *memStore
	svc      *EventService
	clock    *clock.Fixed
	notifier *notifierStub
	mainHall models.Room
	confA    models.Room
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	store := newMemStore()
	clk := clock.NewFixed(at("2024-01-15T10:30:00Z"))
	notifier := &notifierStub{}
	svc := NewEventService(store.eventsRepo(), store.roomsRepo(), nil, notifier, nil, clk, EventServiceConfig{}, nil, nil)
	return &eventFixture{
		store:    store,
		svc:      svc,
		clock:    clk,
		notifier: notifier,
		mainHall: store.addRoom("Main Hall"),
		confA:    store.addRoom("Conference Room A"),
	}
}

func at(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func createReq(name string, roomID int64, start, end string) dto.CreateEventRequest {
	return dto.CreateEventRequest{Name: name, RoomID: roomID, StartTime: start, EndTime: end}
}

func requireKind(t *testing.T, err error, kind *appErrors.Error, message string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, kind.Code, appErr.Code, appErr.Message)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestEventServiceCreate(t *testing.T) {
	f := newEventFixture(t)

	resp, err := f.svc.Create(context.Background(), createReq(" Product Launch ", f.confA.ID, "2024-01-15T10:00:00Z", "2024-01-15T12:00:00.000Z"))
	require.NoError(t, err)
	assert.Equal(t, "Event created successfully", resp.Message)
	assert.Equal(t, "Product Launch", resp.Name)
	assert.Equal(t, "2024-01-15T10:00:00.000Z", resp.StartTime)
	require.NotNil(t, resp.Room)
	assert.Equal(t, "Conference Room A", resp.Room.Name)
	assert.Equal(t, []string{models.BookingCreated}, f.notifier.kinds)
}

func TestEventServiceCreateValidation(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		req     dto.CreateEventRequest
		message string
	}{
		{"missing name", createReq("  ", 1, "2024-01-15T10:00:00Z", "2024-01-15T11:00:00Z"), "Event name is required"},
		{"zero room", createReq("x", 0, "2024-01-15T10:00:00Z", "2024-01-15T11:00:00Z"), "Room ID must be greater than 0"},
		{"negative room", createReq("x", -3, "2024-01-15T10:00:00Z", "2024-01-15T11:00:00Z"), "Room ID must be greater than 0"},
		{"missing start", createReq("x", 1, "", "2024-01-15T11:00:00Z"), "Start time must be a valid date string"},
		{"bad end", createReq("x", 1, "2024-01-15T10:00:00Z", "tomorrow"), "End time must be a valid date string"},
		{"equal bounds", createReq("x", 1, "2024-01-15T10:00:00Z", "2024-01-15T10:00:00Z"), msgStartAfterEnd},
		{"reversed bounds", createReq("x", 1, "2024-01-15T11:00:00Z", "2024-01-15T10:00:00Z"), msgStartAfterEnd},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.req)
			requireKind(t, err, appErrors.ErrValidation, tc.message)
		})
	}
	assert.Empty(t, f.notifier.kinds)
}

func TestEventServiceCreateEqualBoundsRejectedEverywhere(t *testing.T) {
	f := newEventFixture(t)
	for _, roomID := range []int64{f.mainHall.ID, f.confA.ID, 99} {
		_, err := f.svc.Create(context.Background(), createReq(fmt.Sprintf("instant-%d", roomID), roomID, "2024-02-01T09:00:00Z", "2024-02-01T09:00:00Z"))
		requireKind(t, err, appErrors.ErrValidation, msgStartAfterEnd)
	}
}

func TestEventServiceCreateTouchingBoundaries(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, createReq("A", f.mainHall.ID, "2024-01-15T09:00:00Z", "2024-01-15T11:00:00Z"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, createReq("B", f.mainHall.ID, "2024-01-15T11:00:00Z", "2024-01-15T12:00:00Z"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, createReq("C", f.mainHall.ID, "2024-01-15T08:00:00Z", "2024-01-15T09:00:00Z"))
	require.NoError(t, err)
}

func TestEventServiceCreateDuplicateName(t *testing.T) {
	f := newEventFixture(t)
	f.store.addEvent("Annual Meeting", f.mainHall.ID, at("2024-01-16T10:00:00Z"), at("2024-01-16T14:00:00Z"))

	_, err := f.svc.Create(context.Background(), createReq("Annual Meeting", f.confA.ID, "2025-06-01T10:00:00Z", "2025-06-01T11:00:00Z"))
	requireKind(t, err, appErrors.ErrConflict, "An event with this name already exists.")
}

func TestEventServiceCreateMissingRoomReportedBeforeOverlap(t *testing.T) {
	f := newEventFixture(t)

	_, err := f.svc.Create(context.Background(), createReq("Ghost", 99, "2024-01-15T10:00:00Z", "2024-01-15T11:00:00Z"))
	requireKind(t, err, appErrors.ErrNotFound, "Room not found.")
	assert.Zero(t, f.store.listCalls)
}

func TestEventServiceCreateOverlapMessage(t *testing.T) {
	f := newEventFixture(t)
	f.store.addEvent("Product Launch", f.confA.ID, at("2024-01-15T10:00:00Z"), at("2024-01-15T12:00:00Z"))

	_, err := f.svc.Create(context.Background(), createReq("Standup", f.confA.ID, "2024-01-15T11:30:00Z", "2024-01-15T12:30:00Z"))
	requireKind(t, err, appErrors.ErrConflict,
		`Event overlaps with existing event "Product Launch" in room "Conference Room A". Conflicting time: 2024-01-15T10:00:00.000Z - 2024-01-15T12:00:00.000Z`)
	assert.Empty(t, f.notifier.kinds)
}

func TestEventServiceCreateOverlapInOtherRoomIsFine(t *testing.T) {
	f := newEventFixture(t)
	f.store.addEvent("Product Launch", f.confA.ID, at("2024-01-15T10:00:00Z"), at("2024-01-15T12:00:00Z"))

	_, err := f.svc.Create(context.Background(), createReq("Keynote", f.mainHall.ID, "2024-01-15T10:00:00Z", "2024-01-15T12:00:00Z"))
	require.NoError(t, err)
}

func TestEventServiceCreateUnexpectedStoreFailure(t *testing.T) {
	f := newEventFixture(t)
	f.store.createErr = errors.New("connection reset")

	_, err := f.svc.Create(context.Background(), createReq("Keynote", f.mainHall.ID, "2024-01-15T10:00:00Z", "2024-01-15T12:00:00Z"))
	requireKind(t, err, appErrors.ErrValidation, "An unexpected error occurred while creating the event.")
}

func TestEventServiceCreateExclusionViolationIsConflict(t *testing.T) {
	f := newEventFixture(t)
	f.store.createErr = fmt.Errorf("create event: %w", repository.ErrOverlap)

	_, err := f.svc.Create(context.Background(), createReq("Keynote", f.mainHall.ID, "2024-01-15T10:00:00Z", "2024-01-15T12:00:00Z"))
	requireKind(t, err, appErrors.ErrConflict, `Event overlaps with an existing event in room "Main Hall".`)
}

func TestEventServiceConcurrentOverlappingCreates(t *testing.T) {
	f := newEventFixture(t)
	const workers = 12

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := at("2024-03-01T10:00:00Z").Add(time.Duration(i) * time.Minute)
			_, errs[i] = f.svc.Create(context.Background(), dto.CreateEventRequest{
				Name:      fmt.Sprintf("race-%d", i),
				RoomID:    f.mainHall.ID,
				StartTime: start.Format(time.RFC3339),
				EndTime:   start.Add(time.Hour).Format(time.RFC3339),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireKind(t, err, appErrors.ErrConflict, "")
	}
	assert.Equal(t, 1, succeeded)

	events, err := f.svc.FindByRoom(context.Background(), f.mainHall.ID)
	require.NoError(t, err)
	assertNoOverlaps(t, events)
}

func TestEventServiceConcurrentUpdatesIntoSameSlot(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newEventFixture(t)
		early := f.store.addEvent("Early", f.mainHall.ID, at("2024-03-01T09:00:00Z"), at("2024-03-01T10:00:00Z"))
		late := f.store.addEvent("Late", f.mainHall.ID, at("2024-03-01T11:00:00Z"), at("2024-03-01T12:00:00Z"))

		// Each stretch is free on its own; together they collide between 10:15 and 10:45.
		requests := []struct {
			id  int64
			req dto.UpdateEventRequest
		}{
			{early.ID, dto.UpdateEventRequest{EndTime: strPtr("2024-03-01T10:45:00Z")}},
			{late.ID, dto.UpdateEventRequest{StartTime: strPtr("2024-03-01T10:15:00Z")}},
		}

		var wg sync.WaitGroup
		errs := make([]error, len(requests))
		for i := range requests {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.svc.Update(context.Background(), requests[i].id, requests[i].req)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			requireKind(t, err, appErrors.ErrConflict, "")
		}
		assert.Equal(t, 1, succeeded, "round %d", round)

		events, err := f.svc.FindByRoom(context.Background(), f.mainHall.ID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assertNoOverlaps(t, events)
	}
}

func assertNoOverlaps(t *testing.T, events []models.Event) {
	t.Helper()
	for i := range events {
		for j := range events {
			if i == j || events[i].RoomID != events[j].RoomID {
				continue
			}
			assert.False(t, events[i].Overlaps(events[j].StartTime, events[j].EndTime), "%s overlaps %s", events[i].Name, events[j].Name)
		}
	}
}

func TestEventServiceUpdate(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	launch := f.store.addEvent("Product Launch", f.confA.ID, at("2024-01-15T10:00:00Z"), at("2024-01-15T12:00:00Z"))
	f.store.addEvent("Team Building Workshop", f.confA.ID, at("2024-01-15T14:00:00Z"), at("2024-01-15T17:00:00Z"))
	f.store.addEvent("Tech Conference 2024", f.mainHall.ID, at("2024-01-15T09:00:00Z"), at("2024-01-15T17:00:00Z"))

	t.Run("missing event", func(t *testing.T) {
		_, err := f.svc.Update(ctx, 404, dto.UpdateEventRequest{Name: strPtr("x")})
		requireKind(t, err, appErrors.ErrNotFound, "Event not found.")
	})

	t.Run("rename to taken name", func(t *testing.T) {
		_, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{Name: strPtr("Team Building Workshop")})
		requireKind(t, err, appErrors.ErrConflict, "An event with this name already exists.")
	})

	t.Run("same name is a no-op", func(t *testing.T) {
		event, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{Name: strPtr("Product Launch")})
		require.NoError(t, err)
		assert.Equal(t, "Product Launch", event.Name)
		assert.Empty(t, f.notifier.kinds)
	})

	t.Run("both bounds reversed", func(t *testing.T) {
		_, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{StartTime: strPtr("2024-01-15T12:00:00Z"), EndTime: strPtr("2024-01-15T11:00:00Z")})
		requireKind(t, err, appErrors.ErrValidation, msgStartAfterEnd)
	})

	t.Run("single bound past stored end", func(t *testing.T) {
		_, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{StartTime: strPtr("2024-01-15T12:30:00Z")})
		requireKind(t, err, appErrors.ErrValidation, msgStartAfterEnd)
	})

	t.Run("extend into next booking", func(t *testing.T) {
		_, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{EndTime: strPtr("2024-01-15T15:00:00Z")})
		requireKind(t, err, appErrors.ErrConflict,
			`Event overlaps with existing event "Team Building Workshop" in room "Conference Room A". Conflicting time: 2024-01-15T14:00:00.000Z - 2024-01-15T17:00:00.000Z`)
	})

	t.Run("extend up to next booking", func(t *testing.T) {
		event, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{EndTime: strPtr("2024-01-15T14:00:00Z")})
		require.NoError(t, err)
		assert.Equal(t, at("2024-01-15T14:00:00Z"), event.EndTime)
	})

	t.Run("move to missing room", func(t *testing.T) {
		_, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{RoomID: int64Ptr(99)})
		requireKind(t, err, appErrors.ErrNotFound, "Room not found.")
	})

	t.Run("move into busy room", func(t *testing.T) {
		_, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{RoomID: int64Ptr(f.mainHall.ID)})
		requireKind(t, err, appErrors.ErrConflict,
			`Event overlaps with existing event "Tech Conference 2024" in room "Main Hall". Conflicting time: 2024-01-15T09:00:00.000Z - 2024-01-15T17:00:00.000Z`)
	})

	t.Run("rename and shrink", func(t *testing.T) {
		event, err := f.svc.Update(ctx, launch.ID, dto.UpdateEventRequest{Name: strPtr("Launch"), StartTime: strPtr("2024-01-15T10:30")})
		require.NoError(t, err)
		assert.Equal(t, "Launch", event.Name)
		assert.Equal(t, at("2024-01-15T10:30:00Z"), event.StartTime)
		require.NotNil(t, event.Room)
		assert.Equal(t, "Conference Room A", event.Room.Name)
	})

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assertNoOverlaps(t, all)
	assert.Equal(t, []string{models.BookingUpdated, models.BookingUpdated}, f.notifier.kinds)
}

func TestEventServiceRemoveAndCancelByName(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	a := f.store.addEvent("A", f.mainHall.ID, at("2024-01-15T09:00:00Z"), at("2024-01-15T10:00:00Z"))
	f.store.addEvent("B", f.mainHall.ID, at("2024-01-15T10:00:00Z"), at("2024-01-15T11:00:00Z"))

	deleted, err := f.svc.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", deleted.Name)

	_, err = f.svc.Remove(ctx, a.ID)
	requireKind(t, err, appErrors.ErrNotFound, "Event not found.")

	_, err = f.svc.CancelByName(ctx, "nope")
	requireKind(t, err, appErrors.ErrNotFound, "Event not found.")

	_, err = f.svc.CancelByName(ctx, " ")
	requireKind(t, err, appErrors.ErrValidation, "Event name is required")

	cancelled, err := f.svc.CancelByName(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "B", cancelled.Name)

	remaining, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, []string{models.BookingCancelled, models.BookingCancelled}, f.notifier.kinds)
}

func TestEventServiceFindOne(t *testing.T) {
	f := newEventFixture(t)
	a := f.store.addEvent("A", f.mainHall.ID, at("2024-01-15T09:00:00Z"), at("2024-01-15T10:00:00Z"))

	event, err := f.svc.FindOne(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main Hall", event.Room.Name)

	event, err = f.svc.FindOne(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestEventServiceFindActiveBetween(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	f.store.addEvent("C", f.confA.ID, at("2024-01-15T10:00:00Z"), at("2024-01-15T11:30:00Z"))
	f.store.addEvent("A", f.mainHall.ID, at("2024-01-15T09:00:00Z"), at("2024-01-15T11:00:00Z"))
	f.store.addEvent("Later", f.mainHall.ID, at("2024-01-15T11:00:00Z"), at("2024-01-15T12:00:00Z"))

	events, err := f.svc.FindActiveBetween(ctx, "2024-01-15T10:00:00Z", "2024-01-15T10:45:00Z")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].Name)
	assert.Equal(t, "C", events[1].Name)

	_, err = f.svc.FindActiveBetween(ctx, "garbage", "2024-01-15T10:45:00Z")
	requireKind(t, err, appErrors.ErrValidation, "Invalid date format provided.")

	_, err = f.svc.FindActiveBetween(ctx, "2024-01-15T10:45:00Z", "2024-01-15T10:45:00Z")
	requireKind(t, err, appErrors.ErrValidation, "Start date must be before end date.")
}

func TestEventServiceFindCurrentlyActiveAndUpcoming(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	f.store.addEvent("Running", f.mainHall.ID, at("2024-01-15T10:30:00Z"), at("2024-01-15T11:00:00Z"))
	f.store.addEvent("Ended", f.confA.ID, at("2024-01-15T09:00:00Z"), at("2024-01-15T10:30:00Z"))
	for i := 0; i < 15; i++ {
		start := at("2024-01-16T08:00:00Z").Add(time.Duration(i) * time.Hour)
		f.store.addEvent(fmt.Sprintf("future-%02d", i), f.confA.ID, start, start.Add(time.Hour))
	}

	active, err := f.svc.FindCurrentlyActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Running", active[0].Name)

	upcoming, err := f.svc.FindUpcoming(ctx, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 10)
	assert.Equal(t, "future-00", upcoming[0].Name)

	upcoming, err = f.svc.FindUpcoming(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, upcoming, 3)

	f.clock.Advance(time.Hour)
	active, err = f.svc.FindCurrentlyActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestEventServiceUpcomingLimitIsCapped(t *testing.T) {
	store := newMemStore()
	room := store.addRoom("Auditorium")
	for i := 0; i < 8; i++ {
		start := at("2030-01-01T00:00:00Z").Add(time.Duration(i) * time.Hour)
		store.addEvent(fmt.Sprintf("e%d", i), room.ID, start, start.Add(time.Hour))
	}
	svc := NewEventService(store.eventsRepo(), store.roomsRepo(), nil, nil, nil,
		clock.NewFixed(at("2024-01-01T00:00:00Z")), EventServiceConfig{DefaultUpcomingLimit: 2, MaxUpcomingLimit: 5}, nil, nil)

	events, err := svc.FindUpcoming(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	events, err = svc.FindUpcoming(context.Background(), -1)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestEventServiceFindByRoom(t *testing.T) {
	f := newEventFixture(t)
	f.store.addEvent("Late", f.confA.ID, at("2024-01-15T14:00:00Z"), at("2024-01-15T15:00:00Z"))
	f.store.addEvent("Early", f.confA.ID, at("2024-01-15T08:00:00Z"), at("2024-01-15T09:00:00Z"))

	events, err := f.svc.FindByRoom(context.Background(), f.confA.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Early", events[0].Name)

	_, err = f.svc.FindByRoom(context.Background(), 77)
	requireKind(t, err, appErrors.ErrNotFound, "Room not found.")
}

func TestEventServiceGetRoomAvailability(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	f.store.addEvent("Product Launch", f.confA.ID, at("2024-01-15T10:00:00Z"), at("2024-01-15T12:00:00Z"))

	busy, err := f.svc.GetRoomAvailability(ctx, f.confA.ID, "2024-01-15T09:00:00Z", "2024-01-15T11:00:00Z")
	require.NoError(t, err)
	assert.False(t, busy.IsAvailable)
	require.Len(t, busy.ConflictingEvents, 1)
	assert.Equal(t, "Product Launch", busy.ConflictingEvents[0].Name)
	assert.Equal(t, "Conference Room A", busy.Room.Name)

	free, err := f.svc.GetRoomAvailability(ctx, f.confA.ID, "2024-01-15T13:00:00Z", "2024-01-15T15:00:00Z")
	require.NoError(t, err)
	assert.True(t, free.IsAvailable)
	assert.Empty(t, free.ConflictingEvents)
	assert.NotNil(t, free.ConflictingEvents)

	_, err = f.svc.GetRoomAvailability(ctx, 99, "garbage", "garbage")
	requireKind(t, err, appErrors.ErrNotFound, "Room not found.")

	_, err = f.svc.GetRoomAvailability(ctx, f.confA.ID, "2024-01-15T15:00:00Z", "2024-01-15T13:00:00Z")
	requireKind(t, err, appErrors.ErrValidation, "Start date must be before end date.")
}

func TestEventServiceStoreFailuresAreInternal(t *testing.T) {
	f := newEventFixture(t)
	f.store.listErr = errors.New("db down")

	_, err := f.svc.ListAll(context.Background())
	requireKind(t, err, appErrors.ErrInternal, "")
	_, err = f.svc.FindCurrentlyActive(context.Background())
	requireKind(t, err, appErrors.ErrInternal, "")
}
