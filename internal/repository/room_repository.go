package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/room-booking-api/internal/models"
)

// RoomRepository persists rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// WithTx runs fn in a transaction shared with every repository call made with the derived context.
func (r *RoomRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// Create inserts a room and returns it with its generated id.
func (r *RoomRepository) Create(ctx context.Context, name string) (*models.Room, error) {
	const query = `INSERT INTO rooms (name) VALUES ($1) RETURNING id, name`
	var room models.Room
	if err := executor(ctx, r.db).GetContext(ctx, &room, query, name); err != nil {
		return nil, fmt.Errorf("create room: %w", translate(err))
	}
	return &room, nil
}

// FindByID returns nil when the room does not exist.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	return r.get(ctx, `SELECT id, name FROM rooms WHERE id = $1`, id)
}

// FindByName returns nil when no room carries the name.
func (r *RoomRepository) FindByName(ctx context.Context, name string) (*models.Room, error) {
	return r.get(ctx, `SELECT id, name FROM rooms WHERE name = $1`, name)
}

// LockByID loads the room and holds its row lock until the surrounding transaction ends. Bookings
// of the same room serialise on this lock.
func (r *RoomRepository) LockByID(ctx context.Context, id int64) (*models.Room, error) {
	return r.get(ctx, `SELECT id, name FROM rooms WHERE id = $1 FOR UPDATE`, id)
}

func (r *RoomRepository) get(ctx context.Context, query string, arg interface{}) (*models.Room, error) {
	var room models.Room
	if err := executor(ctx, r.db).GetContext(ctx, &room, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

// List returns all rooms ordered by id.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	rooms := []models.Room{}
	if err := executor(ctx, r.db).SelectContext(ctx, &rooms, `SELECT id, name FROM rooms ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Delete removes a room. Rooms referenced by events fail with ErrReferenced.
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete room rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
