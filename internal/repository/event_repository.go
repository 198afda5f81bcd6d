package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/room-booking-api/internal/models"
)

const eventSelect = `
SELECT
	e.id,
	e.name,
	e.room_id,
	e.start_time,
	e.end_time,
	r.name AS room_name
FROM events e
JOIN rooms r ON r.id = e.room_id`

type eventRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	RoomID    int64     `db:"room_id"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
	RoomName  string    `db:"room_name"`
}

func (row eventRow) toModel() models.Event {
	return models.Event{
		ID:        row.ID,
		Name:      row.Name,
		RoomID:    row.RoomID,
		StartTime: row.StartTime.UTC(),
		EndTime:   row.EndTime.UTC(),
		Room:      &models.Room{ID: row.RoomID, Name: row.RoomName},
	}
}

// EventChanges lists the columns of a partial update. Nil fields are left untouched.
type EventChanges struct {
	Name      *string
	RoomID    *int64
	StartTime *time.Time
	EndTime   *time.Time
}

// Empty reports whether no column changes.
func (c EventChanges) Empty() bool {
	return c.Name == nil && c.RoomID == nil && c.StartTime == nil && c.EndTime == nil
}

// Reschedules reports whether the change moves the event in time or space.
func (c EventChanges) Reschedules() bool {
	return c.RoomID != nil || c.StartTime != nil || c.EndTime != nil
}

// EventRepository persists events joined with their rooms.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx runs fn in a transaction shared with every repository call made with the derived context.
func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// Create inserts the event and sets its generated id.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	const query = `INSERT INTO events (name, room_id, start_time, end_time) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := executor(ctx, r.db).GetContext(ctx, &event.ID, query, event.Name, event.RoomID, event.StartTime, event.EndTime); err != nil {
		return fmt.Errorf("create event: %w", translate(err))
	}
	return nil
}

// Update applies the supplied columns. It returns sql.ErrNoRows when the event is gone.
func (r *EventRepository) Update(ctx context.Context, id int64, changes EventChanges) error {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if changes.Name != nil {
		add("name", *changes.Name)
	}
	if changes.RoomID != nil {
		add("room_id", *changes.RoomID)
	}
	if changes.StartTime != nil {
		add("start_time", *changes.StartTime)
	}
	if changes.EndTime != nil {
		add("end_time", *changes.EndTime)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := executor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update event: %w", translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the event. It returns sql.ErrNoRows when nothing was deleted.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns nil when the event does not exist.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	return r.get(ctx, eventSelect+"\nWHERE e.id = $1", id)
}

// LockByID loads the event and locks its row for the rest of the transaction.
func (r *EventRepository) LockByID(ctx context.Context, id int64) (*models.Event, error) {
	return r.get(ctx, eventSelect+"\nWHERE e.id = $1\nFOR UPDATE OF e", id)
}

// FindByName returns nil when no event carries the name.
func (r *EventRepository) FindByName(ctx context.Context, name string) (*models.Event, error) {
	return r.get(ctx, eventSelect+"\nWHERE e.name = $1", name)
}

func (r *EventRepository) get(ctx context.Context, query string, arg interface{}) (*models.Event, error) {
	var row eventRow
	if err := executor(ctx, r.db).GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	event := row.toModel()
	return &event, nil
}

// List returns events matching the filter, each joined with its room.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	query := strings.Builder{}
	query.WriteString(eventSelect)
	query.WriteString("\nWHERE 1=1")

	args := []interface{}{}
	cond := func(format string, value interface{}) {
		args = append(args, value)
		fmt.Fprintf(&query, " AND "+format, len(args))
	}
	if filter.RoomID > 0 {
		cond("e.room_id = $%d", filter.RoomID)
	}
	if filter.ExcludeID > 0 {
		cond("e.id <> $%d", filter.ExcludeID)
	}
	if filter.StartsBefore != nil {
		cond("e.start_time < $%d", *filter.StartsBefore)
	}
	if filter.StartsAtOrBefore != nil {
		cond("e.start_time <= $%d", *filter.StartsAtOrBefore)
	}
	if filter.StartsAfter != nil {
		cond("e.start_time > $%d", *filter.StartsAfter)
	}
	if filter.EndsAfter != nil {
		cond("e.end_time > $%d", *filter.EndsAfter)
	}

	switch filter.Order {
	case models.OrderByStart:
		query.WriteString("\nORDER BY e.start_time ASC, e.id ASC")
	case models.OrderByStartAndRoom:
		query.WriteString("\nORDER BY e.start_time ASC, e.room_id ASC, e.id ASC")
	default:
		query.WriteString("\nORDER BY e.id ASC")
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, "\nLIMIT $%d", len(args))
	}

	var rows []eventRow
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toModel())
	}
	return events, nil
}
