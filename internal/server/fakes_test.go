package server

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"anoa.com/welfaredesk/internal/entity"
	actionRepo "anoa.com/welfaredesk/internal/modules/action/repository"
	beneficiaryRepo "anoa.com/welfaredesk/internal/modules/beneficiary/repository"
	userRepo "anoa.com/welfaredesk/internal/modules/user/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// clock hands out strictly increasing timestamps so newest-first ordering is
// deterministic.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now.IsZero() {
		c.now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	}
	c.now = c.now.Add(time.Second)
	return c.now
}

type memAccounts struct {
	mu    sync.Mutex
	clock *clock
	rows  map[string]entity.Account
}

func (r *memAccounts) Create(ctx context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = a.BeforeCreate(nil)
	for _, row := range r.rows {
		if row.Email == a.Email {
			return uniqueViolation("idx_accounts_email")
		}
	}
	a.CreatedAt = r.clock.tick()
	a.UpdatedAt = a.CreatedAt
	r.rows[a.ID] = *a
	return nil
}

func (r *memAccounts) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *memAccounts) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = entity.NormalizeEmail(email)
	for _, row := range r.rows {
		if row.Email == email {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memAccounts) FindAll(ctx context.Context, f userRepo.AccountFilter) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Account
	for _, row := range r.rows {
		if f.Name != "" && row.Name != f.Name {
			continue
		}
		if f.Email != "" && row.Email != entity.NormalizeEmail(f.Email) {
			continue
		}
		if f.Role != "" && row.Role != f.Role {
			continue
		}
		if f.Department != "" && (row.Department == nil || *row.Department != f.Department) {
			continue
		}
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memAccounts) Update(ctx context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if id != a.ID && row.Email == a.Email {
			return uniqueViolation("idx_accounts_email")
		}
	}
	a.UpdatedAt = r.clock.tick()
	r.rows[a.ID] = *a
	return nil
}

func (r *memAccounts) Delete(ctx context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, a.ID)
	return nil
}

type memBeneficiaries struct {
	mu    sync.Mutex
	clock *clock
	rows  map[string]entity.Beneficiary
}

func (r *memBeneficiaries) conflict(b *entity.Beneficiary) error {
	for id, row := range r.rows {
		if id == b.ID {
			continue
		}
		if row.CNIC == b.CNIC {
			return uniqueViolation("idx_beneficiaries_cnic")
		}
		if row.Number == b.Number {
			return uniqueViolation("idx_beneficiaries_number")
		}
	}
	return nil
}

func (r *memBeneficiaries) Create(ctx context.Context, b *entity.Beneficiary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = b.BeforeCreate(nil)
	if err := r.conflict(b); err != nil {
		return err
	}
	b.CreatedAt = r.clock.tick()
	b.UpdatedAt = b.CreatedAt
	r.rows[b.ID] = *b
	return nil
}

func (r *memBeneficiaries) FindByID(ctx context.Context, id string) (*entity.Beneficiary, error) {
	return r.FindOne(ctx, beneficiaryRepo.Lookup{ID: id})
}

func (r *memBeneficiaries) FindOne(ctx context.Context, l beneficiaryRepo.Lookup) (*entity.Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if l.ID != "" && row.ID != l.ID {
			continue
		}
		if l.Name != "" && row.Name != l.Name {
			continue
		}
		if l.CNIC != 0 && row.CNIC != l.CNIC {
			continue
		}
		if l.Number != "" && row.Number != l.Number {
			continue
		}
		row := row
		return &row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memBeneficiaries) FindAll(ctx context.Context, f beneficiaryRepo.Filter) ([]*entity.Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Beneficiary
	for _, row := range r.rows {
		if f.Status != "" && row.PurposeStatus != f.Status {
			continue
		}
		if f.Visit != 0 && row.Visit != f.Visit {
			continue
		}
		if f.AddedBy != "" && row.AddedBy != f.AddedBy {
			continue
		}
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memBeneficiaries) Update(ctx context.Context, b *entity.Beneficiary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(b); err != nil {
		return err
	}
	b.UpdatedAt = r.clock.tick()
	r.rows[b.ID] = *b
	return nil
}

type memTokens struct {
	mu    sync.Mutex
	clock *clock
	rows  map[string]entity.Token
}

func (r *memTokens) Create(ctx context.Context, t *entity.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = t.BeforeCreate(nil)
	for _, row := range r.rows {
		if row.Number == t.Number {
			return uniqueViolation("idx_tokens_token_id")
		}
	}
	t.CreatedAt = r.clock.tick()
	t.UpdatedAt = t.CreatedAt
	t.Links = nil
	t.SyncActions()
	r.rows[t.ID] = *t
	return nil
}

func (r *memTokens) copyOf(row entity.Token) *entity.Token {
	row.Links = append([]entity.TokenAction(nil), row.Links...)
	row.SyncActions()
	return &row
}

func (r *memTokens) FindByID(ctx context.Context, id string) (*entity.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.copyOf(row), nil
}

func (r *memTokens) FindByNumber(ctx context.Context, number int) (*entity.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Number == number {
			return r.copyOf(row), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memTokens) FindAll(ctx context.Context, status entity.TokenStatus) ([]*entity.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Token
	for _, row := range r.rows {
		if status != "" && row.Status != status {
			continue
		}
		out = append(out, r.copyOf(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memTokens) Update(ctx context.Context, t *entity.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[t.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	links := stored.Links
	stored = *t
	stored.Links = links
	stored.UpdatedAt = r.clock.tick()
	r.rows[t.ID] = stored
	return nil
}

// memActions shares the token store so the link is written together with
// the action, or not at all.
type memActions struct {
	tokens *memTokens
	rows   map[string]entity.Action
}

func (r *memActions) CreateForToken(ctx context.Context, a *entity.Action) error {
	r.tokens.mu.Lock()
	defer r.tokens.mu.Unlock()

	token, ok := r.tokens.rows[a.TokenID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	_ = a.BeforeCreate(nil)
	a.CreatedAt = r.tokens.clock.tick()
	a.UpdatedAt = a.CreatedAt
	r.rows[a.ID] = *a

	token.Links = append(token.Links, entity.TokenAction{TokenID: token.ID, ActionID: a.ID, Position: len(token.Links)})
	r.tokens.rows[token.ID] = token
	return nil
}

func (r *memActions) FindByToken(ctx context.Context, tokenID string) ([]*entity.Action, error) {
	r.tokens.mu.Lock()
	defer r.tokens.mu.Unlock()

	var out []*entity.Action
	for _, link := range r.tokens.rows[tokenID].Links {
		row := r.rows[link.ActionID]
		out = append(out, &row)
	}
	return out, nil
}

var _ actionRepo.ActionRepository = (*memActions)(nil)

type fakeHost struct {
	mu       sync.Mutex
	failOn   string
	uploaded []string
	deleted  []string
}

func (h *fakeHost) UploadImage(ctx context.Context, r io.Reader, fileName string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	if h.failOn != "" && strings.HasPrefix(fileName, h.failOn) {
		return "", errors.New("media host unavailable")
	}
	url := "https://cdn.test/welfaredesk/" + fileName
	h.uploaded = append(h.uploaded, url)
	return url, nil
}

func (h *fakeHost) DeleteImage(ctx context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, url)
	return nil
}
