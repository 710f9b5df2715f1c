package repository

import (
	"context"

	"anoa.com/welfaredesk/internal/entity"
	"gorm.io/gorm"
)

type Filter struct {
	Status  entity.PurposeStatus
	Visit   int
	AddedBy string
}

// Lookup criteria are combined with AND; zero values are ignored.
type Lookup struct {
	ID     string
	Name   string
	CNIC   int64
	Number string
}

type BeneficiaryRepository interface {
	Create(ctx context.Context, beneficiary *entity.Beneficiary) error
	FindByID(ctx context.Context, id string) (*entity.Beneficiary, error)
	FindOne(ctx context.Context, lookup Lookup) (*entity.Beneficiary, error)
	FindAll(ctx context.Context, filter Filter) ([]*entity.Beneficiary, error)
	Update(ctx context.Context, beneficiary *entity.Beneficiary) error
}

type beneficiaryRepository struct {
	db *gorm.DB
}

func NewBeneficiaryRepository(db *gorm.DB) BeneficiaryRepository {
	return &beneficiaryRepository{db: db}
}

func (r *beneficiaryRepository) Create(ctx context.Context, beneficiary *entity.Beneficiary) error {
	return r.db.WithContext(ctx).Create(beneficiary).Error
}

func (r *beneficiaryRepository) FindByID(ctx context.Context, id string) (*entity.Beneficiary, error) {
	var beneficiary entity.Beneficiary
	if err := r.db.WithContext(ctx).First(&beneficiary, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &beneficiary, nil
}

func (r *beneficiaryRepository) FindOne(ctx context.Context, lookup Lookup) (*entity.Beneficiary, error) {
	var beneficiary entity.Beneficiary
	query := r.db.WithContext(ctx)

	if lookup.ID != "" {
		query = query.Where("id = ?", lookup.ID)
	}
	if lookup.Name != "" {
		query = query.Where("name = ?", lookup.Name)
	}
	if lookup.CNIC != 0 {
		query = query.Where("cnic = ?", lookup.CNIC)
	}
	if lookup.Number != "" {
		query = query.Where("number = ?", lookup.Number)
	}

	if err := query.First(&beneficiary).Error; err != nil {
		return nil, err
	}
	return &beneficiary, nil
}

// FindAll returns the newest beneficiaries first.
func (r *beneficiaryRepository) FindAll(ctx context.Context, filter Filter) ([]*entity.Beneficiary, error) {
	var beneficiaries []*entity.Beneficiary
	query := r.db.WithContext(ctx)

	if filter.Status != "" {
		query = query.Where("purpose_status = ?", filter.Status)
	}
	if filter.Visit != 0 {
		query = query.Where("visit = ?", filter.Visit)
	}
	if filter.AddedBy != "" {
		query = query.Where("added_by = ?", filter.AddedBy)
	}

	if err := query.Order("created_at DESC").Find(&beneficiaries).Error; err != nil {
		return nil, err
	}
	return beneficiaries, nil
}

func (r *beneficiaryRepository) Update(ctx context.Context, beneficiary *entity.Beneficiary) error {
	return r.db.WithContext(ctx).Save(beneficiary).Error
}
