package auth

import (
	"context"
	"os"
	"time"

	autherrors "leavedesk/internal/auth/errors"
	"leavedesk/internal/shared/contextutil"
	"leavedesk/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Tokens expire after a fixed hour; clients re-authenticate.
const tokenTTL = time.Hour

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, username, password string) (LoginResponse, error)
}

type service struct {
	users  user.Repository
	logger *zap.Logger
}

func NewService(users user.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{users: users, logger: l}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *service) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.log(ctx).Warn("login rejected", zap.String("username", username))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	token, err := generateToken(u.Username, u.Role, tokenTTL)
	if err != nil {
		s.log(ctx).Error("token generation failed", zap.Error(err))
		return LoginResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.log(ctx).Info("login success",
		zap.String("username", u.Username),
		zap.String("role", u.Role),
	)
	return LoginResponse{
		Username: u.Username,
		Role:     u.Role,
		Token:    token,
	}, nil
}

func generateToken(username, role string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
