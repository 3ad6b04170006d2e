package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/pkg/hash"
	"github.com/Skotchmaster/phimart/pkg/logging"
	"github.com/Skotchmaster/phimart/pkg/tokens"
)

const minPasswordLen = 8

type AuthService struct {
	Store  repo.Store
	Issuer *tokens.Issuer
}

func NewAuthService(store repo.Store, issuer *tokens.Issuer) *AuthService {
	return &AuthService{Store: store, Issuer: issuer}
}

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Address     string
	PhoneNumber string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	IsStaff      bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	if _, err := s.Store.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Address:      in.Address,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login failed", "reason", "unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "wrong password", "user_id", user.ID)
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	access, accessExp, err := s.Issuer.SignAccess(user.ID, user.IsStaff)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := s.Issuer.SignRefresh(user.ID, user.IsStaff)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsStaff:      user.IsStaff,
	}, nil
}

// Refresh issues a new access token. The staff flag is re-read from the
// user so a demotion takes effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.Issuer.RefreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	uid, err := claims.UserID()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	user, err := s.Store.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return "", time.Time{}, fmt.Errorf("load user: %w", err)
	}

	access, exp, err := s.Issuer.SignAccess(user.ID, user.IsStaff)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return access, exp, nil
}
