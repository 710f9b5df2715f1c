package service

import (
	"context"
	"errors"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/internal/modules/user/dto"
	"anoa.com/welfaredesk/internal/modules/user/repository"
	"anoa.com/welfaredesk/pkg/apperror"
	"anoa.com/welfaredesk/pkg/credential"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenType          = "Bearer"
	msgBadCredentials  = "Invalid credentials."
	msgTooManyAttempts = "Too many failed login attempts. Please try again later."
)

// LoginThrottle counts failed logins per email.
type LoginThrottle interface {
	Blocked(ctx context.Context, key string) bool
	Fail(ctx context.Context, key string)
	Reset(ctx context.Context, key string)
}

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo     repository.AccountRepository
	creds    *credential.Manager
	throttle LoginThrottle
}

// NewAuthService accepts a nil throttle, which disables lockout.
func NewAuthService(repo repository.AccountRepository, creds *credential.Manager, throttle LoginThrottle) AuthService {
	return &authService{repo: repo, creds: creds, throttle: throttle}
}

// Login answers an unknown email and a wrong password the same way.
func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	key := entity.NormalizeEmail(input.Email)
	if s.throttle != nil && s.throttle.Blocked(ctx, key) {
		return nil, apperror.TooManyRequests(msgTooManyAttempts)
	}

	account, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.fail(ctx, key)
			return nil, apperror.Forbidden(msgBadCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		s.fail(ctx, key)
		return nil, apperror.Forbidden(msgBadCredentials)
	}
	if s.throttle != nil {
		s.throttle.Reset(ctx, key)
	}

	token, expiresAt, err := s.creds.Issue(account.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:      account,
		Token:     token,
		TokenType: tokenType,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) fail(ctx context.Context, key string) {
	if s.throttle != nil {
		s.throttle.Fail(ctx, key)
	}
}
