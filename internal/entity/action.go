package entity

import (
	"time"

	"gorm.io/gorm"
)

// Action is an audit entry recorded by staff against a token.
type Action struct {
	ID          string    `gorm:"type:char(24);primaryKey" json:"id"`
	ActionBy    string    `gorm:"type:char(24);index;not null" json:"actionBy"`
	ActionTaken string    `gorm:"size:100;not null" json:"actionTaken"`
	Remarks     *string   `gorm:"size:300" json:"remarks,omitempty"`
	TokenID     string    `gorm:"column:token;type:char(24);index;not null" json:"token"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (a *Action) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}
