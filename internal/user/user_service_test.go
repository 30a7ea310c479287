package user_test

import (
	"context"
	"errors"
	"testing"

	"leavedesk/internal/balance"
	"leavedesk/internal/user"
	usererrors "leavedesk/internal/user/errors"
	mock_user "leavedesk/internal/user/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeLedger struct {
	resetAllFn func(ctx context.Context) error
	resetOneFn func(ctx context.Context, username string) error
}

func (f *fakeLedger) WithTx(tx *gorm.DB) balance.Ledger { return f }

func (f *fakeLedger) Reserve(ctx context.Context, username string, lt balance.LeaveType, days int) error {
	return nil
}

func (f *fakeLedger) Debit(ctx context.Context, username string, lt balance.LeaveType, days int) error {
	return nil
}

func (f *fakeLedger) Credit(ctx context.Context, username string, lt balance.LeaveType, days int) error {
	return nil
}

func (f *fakeLedger) ResetAll(ctx context.Context) error {
	if f.resetAllFn != nil {
		return f.resetAllFn(ctx)
	}
	return nil
}

func (f *fakeLedger) ResetOne(ctx context.Context, username string) error {
	if f.resetOneFn != nil {
		return f.resetOneFn(ctx, username)
	}
	return nil
}

func (f *fakeLedger) Balances(ctx context.Context, username string) (balance.Balances, error) {
	return balance.Defaults(), nil
}

type userServiceDeps struct {
	sqlMock sqlmock.Sqlmock
	repo    *mock_user.MockRepository
	ledger  *fakeLedger
	service user.Service
	closeFn func()
}

func setupUserServiceTest(t *testing.T) *userServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	assert.NoError(t, err)

	ctrl := gomock.NewController(t)
	repo := mock_user.NewMockRepository(ctrl)
	ledger := &fakeLedger{}
	svc := user.NewService(gormDB, repo, ledger)

	return &userServiceDeps{
		sqlMock: sqlMock,
		repo:    repo,
		ledger:  ledger,
		service: svc,
		closeFn: func() { db.Close() },
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	req := user.CreateUserRequest{
		Username:  "jdoe",
		Password:  "s3cret-pass",
		FirstName: "John",
		LastName:  "Doe",
		Role:      "FACULTY",
	}

	t.Run("success", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "jdoe").
			Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			FindByFullName(gomock.Any(), "John", "Doe").
			Return(nil, gorm.ErrRecordNotFound)

		var created *user.User
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, u *user.User) error {
				created = u
				return nil
			})

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "jdoe", resp.Username)
		assert.Equal(t, 12, resp.CasualLeave)
		assert.Equal(t, 10, resp.MedicalLeave)
		assert.Equal(t, 15, resp.EarnedLeave)
		assert.Equal(t, 15, resp.AcademicLeave)

		assert.NotNil(t, created)
		assert.NotEqual(t, "s3cret-pass", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("s3cret-pass")))
	})

	t.Run("duplicate username", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "jdoe").
			Return(&user.User{Username: "jdoe"}, nil)

		_, err := deps.service.Create(ctx, req)
		assert.ErrorIs(t, err, usererrors.ErrUsernameAlreadyExists)
	})

	t.Run("full name clash", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "jdoe").
			Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			FindByFullName(gomock.Any(), "John", "Doe").
			Return(&user.User{Username: "other"}, nil)

		_, err := deps.service.Create(ctx, req)
		assert.ErrorIs(t, err, usererrors.ErrFullNameClash)
	})

	t.Run("repository error surfaces", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "jdoe").
			Return(nil, errors.New("db down"))

		_, err := deps.service.Create(ctx, req)
		assert.Error(t, err)
	})

	t.Run("unknown role is rejected before any lookup", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		badReq := req
		badReq.Role = "INTERN"

		_, err := deps.service.Create(ctx, badReq)
		assert.ErrorIs(t, err, usererrors.ErrInvalidRole)
	})

	t.Run("case-variant duplicate caught by the unique index", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "jdoe").
			Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			FindByFullName(gomock.Any(), "John", "Doe").
			Return(nil, gorm.ErrRecordNotFound)

		// A concurrent "JDoe" committed between the lookup and the insert;
		// the lower-cased unique index raises the violation.
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_username"})

		_, err := deps.service.Create(ctx, req)
		assert.ErrorIs(t, err, usererrors.ErrUsernameAlreadyExists)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades leave records in one transaction", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "jdoe").
			Return(&user.User{Username: "jdoe"}, nil)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().DeleteRecordsForUser(gomock.Any(), "jdoe").Return(nil)
		deps.repo.EXPECT().Delete(gomock.Any(), "jdoe").Return(nil)

		err := deps.service.Delete(ctx, "jdoe")
		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "ghost").
			Return(nil, gorm.ErrRecordNotFound)

		err := deps.service.Delete(ctx, "ghost")
		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})

	t.Run("record cleanup failure rolls back the user delete", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "jdoe").
			Return(&user.User{Username: "jdoe"}, nil)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().DeleteRecordsForUser(gomock.Any(), "jdoe").Return(errors.New("db down"))

		err := deps.service.Delete(ctx, "jdoe")
		assert.Error(t, err)
	})
}

func TestUserService_ResetLeaves(t *testing.T) {
	ctx := context.Background()

	t.Run("empty username resets everyone", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		var resetAll bool
		deps.ledger.resetAllFn = func(ctx context.Context) error {
			resetAll = true
			return nil
		}

		err := deps.service.ResetLeaves(ctx, "")
		assert.NoError(t, err)
		assert.True(t, resetAll)
	})

	t.Run("named user resets one", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "jdoe").
			Return(&user.User{Username: "jdoe"}, nil)

		var resetUser string
		deps.ledger.resetOneFn = func(ctx context.Context, username string) error {
			resetUser = username
			return nil
		}

		err := deps.service.ResetLeaves(ctx, "jdoe")
		assert.NoError(t, err)
		assert.Equal(t, "jdoe", resetUser)
	})

	t.Run("unknown user", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.closeFn()

		deps.repo.EXPECT().
			FindByUsername(gomock.Any(), "ghost").
			Return(nil, gorm.ErrRecordNotFound)

		err := deps.service.ResetLeaves(ctx, "ghost")
		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}
