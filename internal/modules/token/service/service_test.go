package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/internal/modules/token/dto"
	"anoa.com/welfaredesk/pkg/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// takenRepo rejects every number in taken and records the rest.
type takenRepo struct {
	taken   map[int]bool
	created []*entity.Token
	err     error
}

func (r *takenRepo) Create(ctx context.Context, t *entity.Token) error {
	if r.err != nil {
		return r.err
	}
	if r.taken[t.Number] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_tokens_token_id"}
	}
	_ = t.BeforeCreate(nil)
	r.created = append(r.created, t)
	return nil
}

func (r *takenRepo) FindByID(ctx context.Context, id string) (*entity.Token, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *takenRepo) FindByNumber(ctx context.Context, number int) (*entity.Token, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *takenRepo) FindAll(ctx context.Context, status entity.TokenStatus) ([]*entity.Token, error) {
	return nil, nil
}

func (r *takenRepo) Update(ctx context.Context, t *entity.Token) error { return nil }

type noBeneficiaries struct{}

func (noBeneficiaries) FindByID(ctx context.Context, id string) (*entity.Beneficiary, error) {
	return nil, gorm.ErrRecordNotFound
}

func sequence(numbers ...int) NumberSource {
	return func() int {
		n := numbers[0]
		if len(numbers) > 1 {
			numbers = numbers[1:]
		}
		return n
	}
}

func TestGenerateRedrawsTakenNumbers(t *testing.T) {
	repo := &takenRepo{taken: map[int]bool{111111: true, 222222: true}}
	svc := NewTokenService(repo, noBeneficiaries{}, sequence(111111, 222222, 333333))

	token, err := svc.Generate(context.Background(), entity.NewID(), dto.GenerateTokenInput{Department: "health"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token.Number != 333333 || token.Status != entity.TokenStatusNew {
		t.Fatalf("unexpected token %+v", token)
	}
}

func TestGenerateGivesUpAfterFiveDraws(t *testing.T) {
	repo := &takenRepo{taken: map[int]bool{111111: true}}
	svc := NewTokenService(repo, noBeneficiaries{}, sequence(111111))

	_, err := svc.Generate(context.Background(), entity.NewID(), dto.GenerateTokenInput{Department: "health"})
	if !errors.Is(err, apperror.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if apperror.MapErrorToStatus(err) != http.StatusInternalServerError || len(repo.created) != 0 {
		t.Fatalf("nothing should be created")
	}
}

func TestGenerateStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewTokenService(&takenRepo{err: boom}, noBeneficiaries{}, sequence(111111))

	if _, err := svc.Generate(context.Background(), entity.NewID(), dto.GenerateTokenInput{Department: "health"}); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestGetByNumberRejectsMalformedNumbers(t *testing.T) {
	svc := NewTokenService(&takenRepo{}, noBeneficiaries{}, nil)

	for _, raw := range []string{"abc", "12345", "1000000", ""} {
		_, err := svc.GetByNumber(context.Background(), raw)
		if apperror.MapErrorToStatus(err) != http.StatusNotFound || apperror.Message(err) != "Token not found." {
			t.Fatalf("GetByNumber(%q) = %v", raw, err)
		}
	}
}

func TestRandomNumberRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if n := RandomNumber(); n < 100000 || n > 999999 {
			t.Fatalf("out of range: %d", n)
		}
	}
}
