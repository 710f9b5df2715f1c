package entity

import (
	"time"

	"gorm.io/gorm"
)

// CNICImage holds the hosted URLs of both sides of the national ID card.
type CNICImage struct {
	Front string `gorm:"column:cnic_front;type:text;not null" json:"front"`
	Back  string `gorm:"column:cnic_back;type:text;not null" json:"back"`
}

type Beneficiary struct {
	ID            string        `gorm:"type:char(24);primaryKey" json:"id"`
	Name          string        `gorm:"size:100;index;not null" json:"name"`
	CNIC          int64         `gorm:"column:cnic;uniqueIndex:idx_beneficiaries_cnic;not null" json:"cnic"`
	Number        string        `gorm:"size:11;uniqueIndex:idx_beneficiaries_number;not null" json:"number"`
	Address       string        `gorm:"type:text;not null" json:"address"`
	Image         string        `gorm:"type:text;not null" json:"image"`
	CNICImage     CNICImage     `gorm:"embedded" json:"cnicImage"`
	Purpose       string        `gorm:"size:1000;not null" json:"purpose"`
	PurposeStatus PurposeStatus `gorm:"size:20;not null;default:pending" json:"purposeStatus"`
	Visit         int           `gorm:"not null;default:1" json:"visit"`
	AddedBy       string        `gorm:"type:char(24);index;not null" json:"addedBy"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (b *Beneficiary) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	if b.PurposeStatus == "" {
		b.PurposeStatus = PurposeStatusPending
	}
	if b.Visit == 0 {
		b.Visit = 1
	}
	return nil
}
