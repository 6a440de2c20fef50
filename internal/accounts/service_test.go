package accounts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(t.TempDir(), "acc.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	s := NewService(
		repository.NewUserRepository(db, nil),
		repository.NewHolidayRepository(db, nil),
		repository.NewRecordRepository(db, nil),
		nil,
	)
	s.cost = bcrypt.MinCost
	s.now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }
	return s
}

func register(t *testing.T, s *Service, username string) {
	t.Helper()
	_, err := s.Register(context.Background(), RegisterRequest{Username: username, Email: username + "@uni.edu", Password: "s3cret!"})
	require.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	u, err := s.Register(ctx, RegisterRequest{Username: " ada ", Email: "ada@uni.edu", Password: "s3cret!", FullName: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)
	assert.NotEqual(t, "s3cret!", u.PasswordHash)
	assert.Nil(t, u.LastLogin)

	got, err := s.Login(ctx, LoginRequest{Username: "ada", Password: "s3cret!"})
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, s.now(), *got.LastLogin)
	assert.Equal(t, "Ada Lovelace", got.FullName)
}

func TestRegister_Duplicate(t *testing.T) {
	s := newTestService(t)
	register(t, s, "ada")

	_, err := s.Register(context.Background(), RegisterRequest{Username: "ada", Email: "other@uni.edu", Password: "another1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestRegister_Validation(t *testing.T) {
	s := newTestService(t)
	cases := map[string]RegisterRequest{
		"short username": {Username: "ab", Email: "a@uni.edu", Password: "secret1"},
		"symbols":        {Username: "ada!", Email: "a@uni.edu", Password: "secret1"},
		"bad email":      {Username: "ada", Email: "not-an-email", Password: "secret1"},
		"short password": {Username: "ada", Email: "a@uni.edu", Password: "12345"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Register(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidInput))
		})
	}

	_, err := s.Register(context.Background(), RegisterRequest{Username: "ab", Email: "x", Password: "1"})
	msg := common.Message(err)
	assert.Contains(t, msg, "username must be at least 3 characters")
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "password must be at least 6 characters")
}

func TestLogin_Denied(t *testing.T) {
	s := newTestService(t)
	register(t, s, "ada")

	_, err := s.Login(context.Background(), LoginRequest{Username: "ada", Password: "wrong-password"})
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	_, err = s.Login(context.Background(), LoginRequest{Username: "nobody", Password: "whatever"})
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	assert.Equal(t, "Invalid username or password", common.Message(err))
}

func TestHolidays(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	register(t, s, "ada")

	h, err := s.AddHoliday(ctx, "ada", HolidayRequest{Date: "2025-08-15", Reason: "Independence Day"})
	require.NoError(t, err)
	_, err = s.AddHoliday(ctx, "ada", HolidayRequest{Date: "2025-06-20"})
	require.NoError(t, err)

	dates, err := s.HolidayDates(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-20", "2025-08-15"}, dates)

	_, err = s.AddHoliday(ctx, "ada", HolidayRequest{Date: "15/08/2025"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = s.AddHoliday(ctx, "ghost", HolidayRequest{Date: "2025-06-21"})
	assert.True(t, errors.Is(err, common.ErrNotFound))

	require.NoError(t, s.DeleteHoliday(ctx, "ada", h.ID))
	err = s.DeleteHoliday(ctx, "ada", uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	list, err := s.ListHolidays(ctx, "ada")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordsAndStats(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	register(t, s, "ada")

	for _, st := range []string{"present", "Late", "absent", "present"} {
		_, err := s.AddRecord(ctx, "ada", RecordRequest{Date: "2025-06-02", Status: st})
		require.NoError(t, err)
	}
	_, err := s.AddRecord(ctx, "ada", RecordRequest{Date: "2025-06-02", Status: "excused"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	stats, err := s.Stats(ctx, "ada", 80)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalClasses)
	assert.Equal(t, 3, stats.AttendedClasses)
	assert.Equal(t, 75.0, stats.AttendancePercentage)
	assert.Equal(t, 0, stats.ClassesToAttendForTarget, "0.8*4-3 truncates to 0")

	_, err = s.Stats(ctx, "ada", 120)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}
