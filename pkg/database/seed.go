package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type seedEvent struct {
	Name  string
	Room  string
	Start time.Time
	End   time.Time
}

var seedRooms = []string{"Main Hall", "Conference Room A", "Conference Room B", "Workshop Room", "Auditorium"}

var seedEvents = []seedEvent{
	{"Tech Conference 2024", "Main Hall", utc(2024, 1, 15, 9), utc(2024, 1, 15, 17)},
	{"Annual Meeting", "Main Hall", utc(2024, 1, 16, 10), utc(2024, 1, 16, 14)},
	{"Product Launch", "Conference Room A", utc(2024, 1, 15, 10), utc(2024, 1, 15, 12)},
	{"Team Building Workshop", "Conference Room A", utc(2024, 1, 15, 14), utc(2024, 1, 15, 16)},
	{"Client Presentation", "Conference Room B", utc(2024, 1, 15, 11), utc(2024, 1, 15, 13)},
	{"Strategy Meeting", "Conference Room B", utc(2024, 1, 16, 9), utc(2024, 1, 16, 11)},
	{"Coding Bootcamp", "Workshop Room", utc(2024, 1, 15, 9), utc(2024, 1, 15, 18)},
	{"Keynote Speech", "Auditorium", utc(2024, 1, 15, 13), utc(2024, 1, 15, 15)},
	{"Award Ceremony", "Auditorium", utc(2024, 1, 16, 16), utc(2024, 1, 16, 18)},
	{"Future Conference", "Main Hall", utc(2024, 2, 1, 9), utc(2024, 2, 1, 17)},
	{"Next Month Workshop", "Workshop Room", utc(2024, 2, 15, 10), utc(2024, 2, 15, 16)},
	{"Morning Session", "Conference Room A", utc(2024, 1, 20, 9), utc(2024, 1, 20, 11)},
	{"Afternoon Session", "Conference Room A", utc(2024, 1, 20, 14), utc(2024, 1, 20, 16)},
}

func utc(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

// SeedResult counts the rows a seed run inserted.
type SeedResult struct {
	Rooms  int64
	Events int64
}

// Seed inserts the demo rooms and events. Existing rows are kept; an event whose name is
// taken or whose slot is already booked is skipped by the unqualified ON CONFLICT clause,
// which also covers the overlap exclusion constraint.
func Seed(ctx context.Context, db *sqlx.DB, logger *zap.Logger) (SeedResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var result SeedResult
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, name := range seedRooms {
		res, err := tx.ExecContext(ctx, `INSERT INTO rooms (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return result, fmt.Errorf("seed room %s: %w", name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			result.Rooms += n
		}
	}

	for _, event := range seedEvents {
		res, err := tx.ExecContext(ctx, `INSERT INTO events (name, room_id, start_time, end_time)
SELECT $1, id, $3, $4 FROM rooms WHERE name = $2
ON CONFLICT DO NOTHING`, event.Name, event.Room, event.Start, event.End)
		if err != nil {
			return result, fmt.Errorf("seed event %s: %w", event.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			continue
		}
		if n == 0 {
			logger.Debug("seed event skipped", zap.String("event", event.Name))
		}
		result.Events += n
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit seed: %w", err)
	}
	logger.Info("seed completed", zap.Int64("rooms", result.Rooms), zap.Int64("events", result.Events))
	return result, nil
}
