package entity

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Account struct {
	ID           string      `gorm:"type:char(24);primaryKey" json:"id"`
	Name         string      `gorm:"size:50;index;not null" json:"name"`
	Email        string      `gorm:"size:100;uniqueIndex:idx_accounts_email;not null" json:"email"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"`
	Role         Role        `gorm:"size:20;not null" json:"role"`
	Department   *Department `gorm:"size:30" json:"department,omitempty"`
	Image        string      `gorm:"type:text" json:"image"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	a.Email = NormalizeEmail(a.Email)
	return nil
}

func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.Email = NormalizeEmail(a.Email)
	return nil
}

// NormalizeEmail is applied before storage and before every lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
