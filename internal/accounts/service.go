// Package accounts manages dashboard users together with their holidays and
// attendance records.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/attendance"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/repository"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=120"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type HolidayRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

type RecordRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Subject string `json:"subject" validate:"omitempty,max=120"`
	Status  string `json:"status" validate:"required,oneof=present absent late"`
	Notes   string `json:"notes" validate:"omitempty,max=500"`
}

type Service struct {
	users    repository.UserRepository
	holidays repository.HolidayRepository
	records  repository.RecordRepository
	validate *validator.Validate
	cost     int
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(users repository.UserRepository, holidays repository.HolidayRepository, records repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{
		users:    users,
		holidays: holidays,
		records:  records,
		validate: v,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		logger:   logger,
	}
}

// Register creates a user. Taken usernames yield ErrConflict.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*entity.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	common.LoggerFrom(ctx, s.logger).Info("accounts.register.ok", "username", u.Username, "user_id", u.ID)
	return u, nil
}

// Login checks credentials and stamps last_login. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*entity.User, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	denied := common.NewAppError("UNAUTHORIZED", "Invalid username or password", common.ErrUnauthorized)

	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, common.ErrNotFound) {
		return nil, denied
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		common.LoggerFrom(ctx, s.logger).Warn("accounts.login.denied", "username", u.Username)
		return nil, denied
	}

	at := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, at); err != nil {
		return nil, err
	}
	u.LastLogin = &at
	return u, nil
}

func (s *Service) AddHoliday(ctx context.Context, username string, req HolidayRequest) (*entity.Holiday, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	h := &entity.Holiday{UserID: u.ID, Date: req.Date, Reason: strings.TrimSpace(req.Reason), CreatedAt: s.now().UTC()}
	if err := s.holidays.Add(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) ListHolidays(ctx context.Context, username string) ([]*entity.Holiday, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.holidays.List(ctx, u.ID)
}

// HolidayDates returns the user's holiday dates in order.
func (s *Service) HolidayDates(ctx context.Context, username string) ([]string, error) {
	list, err := s.ListHolidays(ctx, username)
	if err != nil {
		return nil, err
	}
	dates := make([]string, len(list))
	for i, h := range list {
		dates[i] = h.Date
	}
	return dates, nil
}

func (s *Service) DeleteHoliday(ctx context.Context, username string, id uuid.UUID) error {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.holidays.Delete(ctx, u.ID, id)
}

func (s *Service) AddRecord(ctx context.Context, username string, req RecordRequest) (*entity.AttendanceRecord, error) {
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := s.check(req); err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	rec := &entity.AttendanceRecord{
		UserID:    u.ID,
		Date:      req.Date,
		Subject:   strings.TrimSpace(req.Subject),
		Status:    constants.AttendanceStatus(req.Status),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: s.now().UTC(),
	}
	if err := s.records.Add(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) ListRecords(ctx context.Context, username string) ([]*entity.AttendanceRecord, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.records.List(ctx, u.ID)
}

// Stats derives attendance statistics from every record the user logged.
func (s *Service) Stats(ctx context.Context, username string, target float64) (entity.AttendanceStats, error) {
	list, err := s.ListRecords(ctx, username)
	if err != nil {
		return entity.AttendanceStats{}, err
	}
	records := make([]entity.AttendanceRecord, len(list))
	for i, r := range list {
		records[i] = *r
	}
	return attendance.StatsFromRecords(records, target)
}

// check runs struct validation and flattens failures into one INVALID_INPUT error.
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.InvalidInput(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return common.InvalidInput(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "alphanum":
		return fe.Field() + " must contain only letters and digits"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "datetime":
		return fe.Field() + " must be a date (YYYY-MM-DD)"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
