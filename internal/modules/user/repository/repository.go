package repository

import (
	"context"

	"anoa.com/welfaredesk/internal/entity"
	"gorm.io/gorm"
)

// AccountFilter holds equality filters; zero values are ignored.
type AccountFilter struct {
	Name       string
	Email      string
	Role       entity.Role
	Department entity.Department
}

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByID(ctx context.Context, id string) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindAll(ctx context.Context, filter AccountFilter) ([]*entity.Account, error)
	Update(ctx context.Context, account *entity.Account) error
	Delete(ctx context.Context, account *entity.Account) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).Where("email = ?", entity.NormalizeEmail(email)).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindAll(ctx context.Context, filter AccountFilter) ([]*entity.Account, error) {
	var accounts []*entity.Account
	query := r.db.WithContext(ctx)

	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", entity.NormalizeEmail(filter.Email))
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}

	if err := query.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) Delete(ctx context.Context, account *entity.Account) error {
	return r.db.WithContext(ctx).Delete(account).Error
}
