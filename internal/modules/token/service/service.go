package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/internal/modules/token/dto"
	"anoa.com/welfaredesk/internal/modules/token/repository"
	"anoa.com/welfaredesk/pkg/apperror"
	"anoa.com/welfaredesk/pkg/database"
	"gorm.io/gorm"
)

const (
	msgNotFound            = "Token not found."
	msgNoneFound           = "No tokens found."
	msgBeneficiaryNotFound = "Beneficiary not found."

	maxNumberDraws = 5
)

// NumberSource draws a candidate token number.
type NumberSource func() int

// RandomNumber draws uniformly from 100000..999999.
func RandomNumber() int {
	return rand.IntN(900000) + 100000
}

// BeneficiaryFinder is used to check a referenced beneficiary exists.
type BeneficiaryFinder interface {
	FindByID(ctx context.Context, id string) (*entity.Beneficiary, error)
}

type TokenService interface {
	List(ctx context.Context, filter dto.TokenFilter) ([]*entity.Token, error)
	GetByNumber(ctx context.Context, number string) (*entity.Token, error)
	Generate(ctx context.Context, generatedBy string, input dto.GenerateTokenInput) (*entity.Token, error)
	Edit(ctx context.Context, number string, input dto.EditTokenInput) (*entity.Token, error)
}

type tokenService struct {
	repo          repository.TokenRepository
	beneficiaries BeneficiaryFinder
	draw          NumberSource
}

func NewTokenService(repo repository.TokenRepository, beneficiaries BeneficiaryFinder, draw NumberSource) TokenService {
	if draw == nil {
		draw = RandomNumber
	}
	return &tokenService{repo: repo, beneficiaries: beneficiaries, draw: draw}
}

func (s *tokenService) List(ctx context.Context, filter dto.TokenFilter) ([]*entity.Token, error) {
	var status entity.TokenStatus
	if filter.Status != "" {
		status, _ = entity.ParseTokenStatus(filter.Status)
	}

	tokens, err := s.repo.FindAll(ctx, status)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, apperror.NotFound(msgNoneFound)
	}
	return tokens, nil
}

func (s *tokenService) GetByNumber(ctx context.Context, number string) (*entity.Token, error) {
	n, err := parseNumber(number)
	if err != nil {
		return nil, err
	}

	token, err := s.repo.FindByNumber(ctx, n)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNotFound)
		}
		return nil, err
	}
	return token, nil
}

// Generate issues a token with a fresh number. A number already taken is
// redrawn up to maxNumberDraws times.
func (s *tokenService) Generate(ctx context.Context, generatedBy string, input dto.GenerateTokenInput) (*entity.Token, error) {
	dept, _ := entity.ParseDepartment(input.Department)
	token := &entity.Token{
		Department:  dept,
		Status:      entity.TokenStatusNew,
		GeneratedBy: generatedBy,
	}
	if input.Status != "" {
		token.Status, _ = entity.ParseTokenStatus(input.Status)
	}

	if input.Beneficiary != "" {
		id, err := s.ensureBeneficiary(ctx, input.Beneficiary)
		if err != nil {
			return nil, err
		}
		token.Beneficiary = &id
	}

	for attempt := 0; attempt < maxNumberDraws; attempt++ {
		token.ID = ""
		token.Number = s.draw()

		err := s.repo.Create(ctx, token)
		if err == nil {
			return token, nil
		}
		if _, ok := database.UniqueViolation(err); !ok {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: no free token number after %d draws", apperror.ErrInternal, maxNumberDraws)
}

func (s *tokenService) Edit(ctx context.Context, number string, input dto.EditTokenInput) (*entity.Token, error) {
	token, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	if input.Beneficiary != nil {
		id, err := s.ensureBeneficiary(ctx, *input.Beneficiary)
		if err != nil {
			return nil, err
		}
		token.Beneficiary = &id
	}
	if input.Department != nil {
		token.Department, _ = entity.ParseDepartment(*input.Department)
	}
	if input.Status != nil {
		token.Status, _ = entity.ParseTokenStatus(*input.Status)
	}

	if err := s.repo.Update(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *tokenService) ensureBeneficiary(ctx context.Context, id string) (string, error) {
	id = entity.NormalizeID(id)
	if _, err := s.beneficiaries.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NotFound(msgBeneficiaryNotFound)
		}
		return "", err
	}
	return id, nil
}

// parseNumber treats anything that is not a token number as unknown.
func parseNumber(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 100000 || n > 999999 {
		return 0, apperror.NotFound(msgNotFound)
	}
	return n, nil
}
