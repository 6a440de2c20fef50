package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

type HolidayRepository interface {
	Add(ctx context.Context, h *entity.Holiday) error
	List(ctx context.Context, userID uuid.UUID) ([]*entity.Holiday, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type holidayRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewHolidayRepository(db *DB, logger *slog.Logger) HolidayRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &holidayRepository{db: db, logger: logger}
}

func (r *holidayRepository) Add(ctx context.Context, h *entity.Holiday) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	query, args := r.db.builder().Insert(tableHolidays).
		Columns("id", "user_id", "date", "reason", "created_at").
		Values(h.ID.String(), h.UserID.String(), h.Date, h.Reason, formatTime(h.CreatedAt)).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repo.holidays.add.error", "user_id", h.UserID, "date", h.Date, "error", err)
		return dbError("add holiday", err)
	}
	return nil
}

// List returns the user's holidays ordered by date.
func (r *holidayRepository) List(ctx context.Context, userID uuid.UUID) ([]*entity.Holiday, error) {
	b := r.db.builder()
	query, args := b.Select("id", "date", "reason", "created_at").
		From(b.Table(tableHolidays)).
		Where(entsql.EQ("user_id", userID.String())).
		OrderBy("date", "created_at").
		Query()

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("repo.holidays.list.error", "user_id", userID, "error", err)
		return nil, dbError("list holidays", err)
	}
	defer rows.Close()

	out := make([]*entity.Holiday, 0)
	for rows.Next() {
		var (
			id, created string
			reason      sql.NullString
			h           = entity.Holiday{UserID: userID}
		)
		if err := rows.Scan(&id, &h.Date, &reason, &created); err != nil {
			return nil, dbError("scan holiday", err)
		}
		if h.ID, err = uuid.Parse(id); err != nil {
			return nil, dbError("decode holiday id", err)
		}
		if h.CreatedAt, err = parseTime(created); err != nil {
			return nil, dbError("decode holiday created_at", err)
		}
		h.Reason = reason.String
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list holidays", err)
	}
	return out, nil
}

// Delete removes one of the user's holidays; another user's id is NotFound.
func (r *holidayRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query, args := r.db.builder().Delete(tableHolidays).
		Where(entsql.And(
			entsql.EQ("id", id.String()),
			entsql.EQ("user_id", userID.String()),
		)).
		Query()
	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("repo.holidays.delete.error", "holiday_id", id, "error", err)
		return dbError("delete holiday", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", "Holiday not found", common.ErrNotFound)
	}
	return nil
}
