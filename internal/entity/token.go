package entity

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

// Token is a routing ticket sending a beneficiary to a department. Not to be
// confused with the bearer credential.
type Token struct {
	ID          string        `gorm:"type:char(24);primaryKey" json:"id"`
	Number      int           `gorm:"column:token_id;uniqueIndex:idx_tokens_token_id;not null" json:"tokenId"`
	Beneficiary *string       `gorm:"type:char(24);index" json:"beneficiary"`
	Department  Department    `gorm:"size:30;not null" json:"department"`
	Status      TokenStatus   `gorm:"size:20;not null;default:new" json:"status"`
	Links       []TokenAction `gorm:"foreignKey:TokenID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Actions     []string      `gorm:"-" json:"actions"`
	GeneratedBy string        `gorm:"type:char(24);not null" json:"generatedBy"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TokenAction is one entry of a token's ordered action list.
type TokenAction struct {
	TokenID  string `gorm:"type:char(24);primaryKey"`
	ActionID string `gorm:"type:char(24);primaryKey"`
	Position int    `gorm:"not null"`
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.Status == "" {
		t.Status = TokenStatusNew
	}
	return nil
}

// SyncActions rebuilds the exported action list from the loaded links.
func (t *Token) SyncActions() {
	sort.SliceStable(t.Links, func(i, j int) bool {
		return t.Links[i].Position < t.Links[j].Position
	})
	t.Actions = make([]string, 0, len(t.Links))
	for _, link := range t.Links {
		t.Actions = append(t.Actions, link.ActionID)
	}
}
