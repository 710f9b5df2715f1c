package repository

import (
	"context"

	"anoa.com/welfaredesk/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActionRepository interface {
	// CreateForToken inserts the action and appends it to its token's action
	// list in one transaction. A missing token yields gorm.ErrRecordNotFound
	// and nothing is written.
	CreateForToken(ctx context.Context, action *entity.Action) error
	FindByToken(ctx context.Context, tokenID string) ([]*entity.Action, error)
}

type actionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) ActionRepository {
	return &actionRepository{db: db}
}

func (r *actionRepository) CreateForToken(ctx context.Context, action *entity.Action) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token entity.Token
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&token, "id = ?", action.TokenID).Error; err != nil {
			return err
		}

		if err := tx.Create(action).Error; err != nil {
			return err
		}

		var next int
		if err := tx.Model(&entity.TokenAction{}).
			Where("token_id = ?", token.ID).
			Select("COALESCE(MAX(position), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}

		return tx.Create(&entity.TokenAction{
			TokenID:  token.ID,
			ActionID: action.ID,
			Position: next,
		}).Error
	})
}

// FindByToken lists the token's actions in the order they were linked.
func (r *actionRepository) FindByToken(ctx context.Context, tokenID string) ([]*entity.Action, error) {
	var actions []*entity.Action
	err := r.db.WithContext(ctx).
		Joins("JOIN token_actions ON token_actions.action_id = actions.id").
		Where("token_actions.token_id = ?", tokenID).
		Order("token_actions.position ASC").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}
