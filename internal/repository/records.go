package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

type RecordRepository interface {
	Add(ctx context.Context, rec *entity.AttendanceRecord) error
	List(ctx context.Context, userID uuid.UUID) ([]*entity.AttendanceRecord, error)
}

type recordRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRecordRepository(db *DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) Add(ctx context.Context, rec *entity.AttendanceRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query, args := r.db.builder().Insert(tableRecords).
		Columns("id", "user_id", "date", "subject", "status", "notes", "created_at").
		Values(rec.ID.String(), rec.UserID.String(), rec.Date, rec.Subject, string(rec.Status), rec.Notes, formatTime(rec.CreatedAt)).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repo.records.add.error", "user_id", rec.UserID, "date", rec.Date, "error", err)
		return dbError("add attendance record", err)
	}
	return nil
}

// List returns the user's records, oldest class first.
func (r *recordRepository) List(ctx context.Context, userID uuid.UUID) ([]*entity.AttendanceRecord, error) {
	b := r.db.builder()
	query, args := b.Select("id", "date", "subject", "status", "notes", "created_at").
		From(b.Table(tableRecords)).
		Where(entsql.EQ("user_id", userID.String())).
		OrderBy("date", "created_at").
		Query()

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("repo.records.list.error", "user_id", userID, "error", err)
		return nil, dbError("list attendance records", err)
	}
	defer rows.Close()

	out := make([]*entity.AttendanceRecord, 0)
	for rows.Next() {
		var (
			id, status, created string
			subject, notes      sql.NullString
			rec                 = entity.AttendanceRecord{UserID: userID}
		)
		if err := rows.Scan(&id, &rec.Date, &subject, &status, &notes, &created); err != nil {
			return nil, dbError("scan attendance record", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, dbError("decode attendance record id", err)
		}
		if rec.CreatedAt, err = parseTime(created); err != nil {
			return nil, dbError("decode attendance record created_at", err)
		}
		rec.Subject = subject.String
		rec.Notes = notes.String
		rec.Status = constants.AttendanceStatus(status)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list attendance records", err)
	}
	return out, nil
}
