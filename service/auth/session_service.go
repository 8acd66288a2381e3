// Package auth runs customer sessions: password login, refresh-token rotation
// with reuse detection, and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	coreAuth "storefront.GO/core/auth"
	entity "storefront.GO/model/entity"
	authRepo "storefront.GO/model/repository/auth"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrRefreshInvalid     = errors.New("auth: refresh token invalid or expired")
	ErrRefreshReused      = errors.New("auth: refresh token reused")
	ErrEmailTaken         = errors.New("auth: email already registered")
)

// Session is a freshly issued credential pair.
type Session struct {
	Customer       *entity.Customer
	Access         string
	AccessExpires  time.Time
	Refresh        string
	RefreshExpires time.Time
}

type SessionService struct {
	repo       *authRepo.AuthRepository
	issuer     *coreAuth.TokenIssuer
	refreshTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewSessionService(repo *authRepo.AuthRepository, issuer *coreAuth.TokenIssuer, refreshTTL time.Duration, logger *zap.Logger) *SessionService {
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, issuer: issuer, refreshTTL: refreshTTL, logger: logger, now: time.Now}
}

// Register creates an active customer with a bcrypt password hash.
func (s *SessionService) Register(ctx context.Context, email, password, first, last string) (*entity.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("auth: email and password are required")
	}
	if _, err := s.repo.FindCustomerByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, authRepo.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	c := &entity.Customer{Email: email, PasswordHash: string(hash), Firstname: first, Lastname: last, IsActive: true}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("auth: create customer: %w", err)
	}
	return c, nil
}

// Login checks the password and opens a new rotation chain.
func (s *SessionService) Login(ctx context.Context, email, password string) (*Session, error) {
	c, err := s.repo.FindCustomerByEmail(ctx, email)
	if errors.Is(err, authRepo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	next := s.newToken(c.CustomerID)
	if err := s.repo.CreateToken(ctx, next); err != nil {
		return nil, fmt.Errorf("auth: store refresh token: %w", err)
	}
	return s.session(c, next)
}

// Refresh exchanges a live refresh token for a new pair. Presenting a token
// that was already rotated revokes the customer's whole chain.
func (s *SessionService) Refresh(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrRefreshInvalid
	}
	old, err := s.repo.FindToken(ctx, token)
	if errors.Is(err, authRepo.ErrNotFound) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	if old.Revoked {
		s.logger.Warn("refresh token reuse detected", zap.Uint("customer_id", old.CustomerID))
		if err := s.repo.RevokeAll(ctx, old.CustomerID, now); err != nil {
			return nil, err
		}
		return nil, ErrRefreshReused
	}
	if !old.Active(now) {
		return nil, ErrRefreshInvalid
	}
	c, err := s.repo.FindCustomer(ctx, old.CustomerID)
	if errors.Is(err, authRepo.ErrNotFound) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}

	next := s.newToken(c.CustomerID)
	if err := s.repo.Rotate(ctx, old, next, now); err != nil {
		if errors.Is(err, authRepo.ErrNotFound) {
			// Lost a race against another exchange of the same token.
			return nil, ErrRefreshReused
		}
		return nil, fmt.Errorf("auth: rotate refresh token: %w", err)
	}
	return s.session(c, next)
}

// Logout revokes the refresh token, if any.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.RevokeToken(ctx, token, s.now())
}

// Customer loads the signed-in customer.
func (s *SessionService) Customer(ctx context.Context, id uint) (*entity.Customer, error) {
	return s.repo.FindCustomer(ctx, id)
}

// PurgeExpired drops refresh tokens that expired more than a day ago.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx, s.now().Add(-24*time.Hour))
}

func (s *SessionService) newToken(customerID uint) *entity.RefreshToken {
	return &entity.RefreshToken{
		CustomerID: customerID,
		Token:      uuid.NewString(),
		ExpiresAt:  s.now().Add(s.refreshTTL),
	}
}

func (s *SessionService) session(c *entity.Customer, refresh *entity.RefreshToken) (*Session, error) {
	access, exp, err := s.issuer.Issue(c.CustomerID, c.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		Customer:       c,
		Access:         access,
		AccessExpires:  exp,
		Refresh:        refresh.Token,
		RefreshExpires: refresh.ExpiresAt,
	}, nil
}
