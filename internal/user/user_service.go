package user

import (
	"context"
	"errors"

	"leavedesk/internal/balance"
	"leavedesk/internal/rbac"
	"leavedesk/internal/shared/contextutil"
	usererrors "leavedesk/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	Delete(ctx context.Context, username string) error
	ResetLeaves(ctx context.Context, username string) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	ledger balance.Ledger
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, ledger balance.Ledger, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{db: db, repo: repo, ledger: ledger, logger: l}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	s.log(ctx).Debug("create user requested",
		zap.String("username", req.Username),
		zap.String("role", req.Role),
	)

	// The HTTP binding already constrains the role, but the service is also
	// reachable without it.
	switch req.Role {
	case rbac.RoleFaculty, rbac.RoleHOD, rbac.RoleDirector:
	default:
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	// Case-insensitive duplicate check before the insert; the unique index
	// still backstops a concurrent create.
	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return UserResponse{}, usererrors.ErrUsernameAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UserResponse{}, err
	}

	if _, err := s.repo.FindByFullName(ctx, req.FirstName, req.LastName); err == nil {
		return UserResponse{}, usererrors.ErrFullNameClash
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log(ctx).Error("failed to hash password", zap.Error(err))
		return UserResponse{}, err
	}

	defaults := balance.Defaults()
	u := &User{
		ID:            uuid.New(),
		Username:      req.Username,
		Password:      string(hashed),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          req.Role,
		CasualLeave:   defaults.Casual,
		MedicalLeave:  defaults.Medical,
		EarnedLeave:   defaults.Earned,
		AcademicLeave: defaults.Academic,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.log(ctx).Error("create user persist failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	s.log(ctx).Info("user created", zap.String("username", u.Username), zap.String("role", u.Role))
	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

// Delete removes the user and cascades to their leave records in one
// transaction.
func (s *service) Delete(ctx context.Context, username string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return mapRepositoryError(err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		if err := qtx.DeleteRecordsForUser(ctx, username); err != nil {
			return err
		}
		return qtx.Delete(ctx, username)
	})
	if err != nil {
		s.log(ctx).Error("delete user failed", zap.String("username", username), zap.Error(err))
		return err
	}

	s.log(ctx).Info("user deleted", zap.String("username", username))
	return nil
}

// ResetLeaves restores balance counters to their defaults. An empty username
// resets every user.
func (s *service) ResetLeaves(ctx context.Context, username string) error {
	if username == "" {
		if err := s.ledger.ResetAll(ctx); err != nil {
			s.log(ctx).Error("reset all leave balances failed", zap.Error(err))
			return err
		}
		s.log(ctx).Info("leave balances reset for all users")
		return nil
	}

	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return mapRepositoryError(err)
	}
	if err := s.ledger.ResetOne(ctx, username); err != nil {
		s.log(ctx).Error("reset leave balances failed", zap.String("username", username), zap.Error(err))
		return err
	}
	s.log(ctx).Info("leave balances reset", zap.String("username", username))
	return nil
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		CasualLeave:   u.CasualLeave,
		MedicalLeave:  u.MedicalLeave,
		EarnedLeave:   u.EarnedLeave,
		AcademicLeave: u.AcademicLeave,
		CreatedAt:     u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
