package repository

import (
	"context"

	"anoa.com/welfaredesk/internal/entity"
	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(ctx context.Context, token *entity.Token) error
	FindByID(ctx context.Context, id string) (*entity.Token, error)
	FindByNumber(ctx context.Context, number int) (*entity.Token, error)
	FindAll(ctx context.Context, status entity.TokenStatus) ([]*entity.Token, error)
	Update(ctx context.Context, token *entity.Token) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *entity.Token) error {
	if err := r.db.WithContext(ctx).Omit("Links").Create(token).Error; err != nil {
		return err
	}
	token.SyncActions()
	return nil
}

func (r *tokenRepository) FindByID(ctx context.Context, id string) (*entity.Token, error) {
	var token entity.Token
	if err := r.withLinks(ctx).First(&token, "id = ?", id).Error; err != nil {
		return nil, err
	}
	token.SyncActions()
	return &token, nil
}

func (r *tokenRepository) FindByNumber(ctx context.Context, number int) (*entity.Token, error) {
	var token entity.Token
	if err := r.withLinks(ctx).First(&token, "token_id = ?", number).Error; err != nil {
		return nil, err
	}
	token.SyncActions()
	return &token, nil
}

// FindAll returns the newest tokens first.
func (r *tokenRepository) FindAll(ctx context.Context, status entity.TokenStatus) ([]*entity.Token, error) {
	var tokens []*entity.Token
	query := r.withLinks(ctx)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("created_at DESC").Find(&tokens).Error; err != nil {
		return nil, err
	}
	for _, t := range tokens {
		t.SyncActions()
	}
	return tokens, nil
}

// Update never touches the action links; those are owned by the action add.
func (r *tokenRepository) Update(ctx context.Context, token *entity.Token) error {
	return r.db.WithContext(ctx).Omit("Links").Save(token).Error
}

func (r *tokenRepository) withLinks(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Links", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}
