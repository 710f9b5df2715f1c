package service

import (
	"context"
	"errors"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/internal/modules/action/dto"
	"anoa.com/welfaredesk/internal/modules/action/repository"
	"anoa.com/welfaredesk/pkg/apperror"
	"anoa.com/welfaredesk/pkg/sanitize"
	"gorm.io/gorm"
)

const (
	msgTokenNotFound = "Token not found."
	msgNoneFound     = "No actions found for this token."
)

// TokenFinder resolves a token by its storage id.
type TokenFinder interface {
	FindByID(ctx context.Context, id string) (*entity.Token, error)
}

type ActionService interface {
	ListForToken(ctx context.Context, tokenID string) ([]*entity.Action, error)
	Add(ctx context.Context, actionBy string, input dto.AddActionInput) (*entity.Action, error)
}

type actionService struct {
	repo   repository.ActionRepository
	tokens TokenFinder
}

func NewActionService(repo repository.ActionRepository, tokens TokenFinder) ActionService {
	return &actionService{repo: repo, tokens: tokens}
}

func (s *actionService) ListForToken(ctx context.Context, tokenID string) ([]*entity.Action, error) {
	tokenID = entity.NormalizeID(tokenID)
	if !entity.IsID(tokenID) {
		return nil, apperror.NotFound(msgTokenNotFound)
	}

	if _, err := s.tokens.FindByID(ctx, tokenID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgTokenNotFound)
		}
		return nil, err
	}

	actions, err := s.repo.FindByToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, apperror.NotFound(msgNoneFound)
	}
	return actions, nil
}

func (s *actionService) Add(ctx context.Context, actionBy string, input dto.AddActionInput) (*entity.Action, error) {
	actionTaken, err := sanitize.Field("Action taken", input.ActionTaken, 10)
	if err != nil {
		return nil, err
	}
	remarks, err := sanitize.OptionalField("Remarks", input.Remarks, 30)
	if err != nil {
		return nil, err
	}

	action := &entity.Action{
		ActionBy:    actionBy,
		ActionTaken: actionTaken,
		Remarks:     remarks,
		TokenID:     entity.NormalizeID(input.Token),
	}

	if err := s.repo.CreateForToken(ctx, action); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgTokenNotFound)
		}
		return nil, err
	}
	return action, nil
}
