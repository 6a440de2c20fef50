package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type userRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewUserRepository(db *DB, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{db: db, logger: logger}
}

var userColumns = []string{"id", "username", "email", "full_name", "password_hash", "created_at", "last_login"}

// Create inserts u. A taken username yields ErrConflict.
func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	query, args := r.db.builder().Insert(tableUsers).
		Columns(userColumns[:6]...).
		Values(u.ID.String(), u.Username, u.Email, u.FullName, u.PasswordHash, formatTime(u.CreatedAt)).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return common.NewAppError("CONFLICT", "Username already exists", common.ErrConflict)
		}
		r.logger.Error("repo.users.create.error", "username", u.Username, "error", err)
		return dbError("create user", err)
	}
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	b := r.db.builder()
	query, args := b.Select(userColumns...).
		From(b.Table(tableUsers)).
		Where(entsql.EQ("username", username)).
		Query()

	var (
		u                 entity.User
		id, created       string
		fullName, lastLog sql.NullString
	)
	err := r.db.SQL.QueryRowContext(ctx, query, args...).
		Scan(&id, &u.Username, &u.Email, &fullName, &u.PasswordHash, &created, &lastLog)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "User not found", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("repo.users.get.error", "username", username, "error", err)
		return nil, dbError("load user", err)
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, dbError("decode user id", err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, dbError("decode user created_at", err)
	}
	u.FullName = fullName.String
	if lastLog.Valid {
		t, err := parseTime(lastLog.String)
		if err != nil {
			return nil, dbError("decode user last_login", err)
		}
		u.LastLogin = &t
	}
	return &u, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args := r.db.builder().Update(tableUsers).
		Set("last_login", formatTime(at)).
		Where(entsql.EQ("id", id.String())).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repo.users.touch.error", "user_id", id, "error", err)
		return dbError("update last login", err)
	}
	return nil
}
