package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	entity "storefront.GO/model/entity"
)

// ErrNotFound is returned for an unknown customer or token.
var ErrNotFound = errors.New("auth: not found")

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// FindCustomerByEmail returns an active customer. Emails compare case-insensitively.
func (r *AuthRepository) FindCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	var c entity.Customer
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&c).Error
	return found(&c, err)
}

// FindCustomer returns an active customer by id.
func (r *AuthRepository) FindCustomer(ctx context.Context, id uint) (*entity.Customer, error) {
	var c entity.Customer
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&c, id).Error
	return found(&c, err)
}

// CreateCustomer stores c with a normalized email.
func (r *AuthRepository) CreateCustomer(ctx context.Context, c *entity.Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return r.db.WithContext(ctx).Create(c).Error
}

// FindToken returns a refresh token whatever its state.
func (r *AuthRepository) FindToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	var t entity.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	return found(&t, err)
}

// CreateToken stores a new refresh token.
func (r *AuthRepository) CreateToken(ctx context.Context, t *entity.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Rotate revokes old and stores next in one transaction. It fails with
// ErrNotFound when old was revoked concurrently.
func (r *AuthRepository) Rotate(ctx context.Context, old *entity.RefreshToken, next *entity.RefreshToken, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.RefreshToken{}).
			Where("token_id = ? AND revoked = ?", old.TokenID, false).
			Updates(map[string]any{"revoked": true, "revoked_at": now, "replaced_by": next.Token})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(next).Error
	})
}

// RevokeToken revokes a single token. Unknown tokens are ignored.
func (r *AuthRepository) RevokeToken(ctx context.Context, token string, now time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.RefreshToken{}).
		Where("token = ? AND revoked = ?", token, false).
		Updates(map[string]any{"revoked": true, "revoked_at": now}).Error
}

// RevokeAll revokes every live token of a customer.
func (r *AuthRepository) RevokeAll(ctx context.Context, customerID uint, now time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.RefreshToken{}).
		Where("customer_id = ? AND revoked = ?", customerID, false).
		Updates(map[string]any{"revoked": true, "revoked_at": now}).Error
}

// PurgeExpired deletes tokens that expired before cutoff.
func (r *AuthRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&entity.RefreshToken{})
	return res.RowsAffected, res.Error
}

func found[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
