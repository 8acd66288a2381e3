package entity

import "time"

// RefreshToken is one link of a rotation chain. A revoked token presented
// again means the chain leaked.
type RefreshToken struct {
	TokenID    uint       `gorm:"column:token_id;primaryKey;autoIncrement"`
	CustomerID uint       `gorm:"column:customer_id;not null;index"`
	Token      string     `gorm:"column:token;type:varchar(36);not null;uniqueIndex"`
	Revoked    bool       `gorm:"column:revoked;not null;default:false"`
	ReplacedBy *string    `gorm:"column:replaced_by;type:varchar(36)"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null;index"`
	RevokedAt  *time.Time `gorm:"column:revoked_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (RefreshToken) TableName() string {
	return "customer_refresh_token"
}

// Active reports whether the token can still be exchanged at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
