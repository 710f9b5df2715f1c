package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/internal/modules/user/dto"
	"anoa.com/welfaredesk/internal/modules/user/repository"
	"anoa.com/welfaredesk/pkg/apperror"
	"anoa.com/welfaredesk/pkg/database"
	"anoa.com/welfaredesk/pkg/media"
	"anoa.com/welfaredesk/pkg/sanitize"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	msgUserNotFound = "User not found."
	msgEmailTaken   = "User with this email already exists."
)

var (
	registerSlots = []media.Slot{{Field: "image", Label: "Profile image", Required: true}}
	editSlots     = []media.Slot{{Field: "image", Label: "Profile image"}}
)

type UserService interface {
	Register(ctx context.Context, input dto.RegisterInput, files media.Files) (*entity.Account, error)
	List(ctx context.Context, filter dto.UserFilter) ([]*entity.Account, error)
	Get(ctx context.Context, id string) (*entity.Account, error)
	Edit(ctx context.Context, id string, input dto.EditUserInput, files media.Files) (*entity.Account, error)
	Delete(ctx context.Context, id string) (*entity.Account, error)
}

type userService struct {
	repo     repository.AccountRepository
	uploader media.Uploader
}

func NewUserService(repo repository.AccountRepository, uploader media.Uploader) UserService {
	return &userService{repo: repo, uploader: uploader}
}

func (s *userService) Register(ctx context.Context, input dto.RegisterInput, files media.Files) (*entity.Account, error) {
	if err := s.uploader.Check(files, registerSlots); err != nil {
		return nil, err
	}

	name, err := sanitize.Field("Name", input.Name, 2)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, input.Email, ""); err != nil {
		return nil, err
	}

	role, _ := entity.ParseRole(input.Role)
	account := &entity.Account{
		Name:  name,
		Email: entity.NormalizeEmail(input.Email),
		Role:  role,
	}
	if input.Department != "" {
		dept, _ := entity.ParseDepartment(input.Department)
		account.Department = &dept
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = string(hashed)

	batch, err := s.uploader.Commit(ctx, files, registerSlots)
	if err != nil {
		return nil, err
	}
	account.Image, _ = batch.URL("image")

	if err := s.repo.Create(ctx, account); err != nil {
		_ = batch.Rollback(ctx)
		return nil, translateWriteError(err)
	}

	return account, nil
}

func (s *userService) List(ctx context.Context, filter dto.UserFilter) ([]*entity.Account, error) {
	f := repository.AccountFilter{
		Name:  filter.Name,
		Email: filter.Email,
	}
	if filter.Role != "" {
		f.Role, _ = entity.ParseRole(filter.Role)
	}
	if filter.Department != "" {
		f.Department, _ = entity.ParseDepartment(filter.Department)
	}

	accounts, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*entity.Account{}
	}
	return accounts, nil
}

func (s *userService) Get(ctx context.Context, id string) (*entity.Account, error) {
	return s.find(ctx, id)
}

func (s *userService) Edit(ctx context.Context, id string, input dto.EditUserInput, files media.Files) (*entity.Account, error) {
	if err := s.uploader.Check(files, editSlots); err != nil {
		return nil, err
	}

	name, err := sanitize.OptionalField("Name", input.Name, 2)
	if err != nil {
		return nil, err
	}

	account, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		account.Name = *name
	}

	if input.Email != nil {
		email := entity.NormalizeEmail(*input.Email)
		if email != account.Email {
			if err := s.ensureEmailFree(ctx, email, account.ID); err != nil {
				return nil, err
			}
			account.Email = email
		}
	}

	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = string(hashed)
	}

	if input.Role != nil {
		account.Role, _ = entity.ParseRole(*input.Role)
	}

	if input.Department != nil {
		if strings.TrimSpace(*input.Department) == "" {
			account.Department = nil
		} else {
			dept, _ := entity.ParseDepartment(*input.Department)
			account.Department = &dept
		}
	}

	batch, err := s.uploader.Commit(ctx, files, editSlots)
	if err != nil {
		return nil, err
	}
	var replaced string
	if url, ok := batch.URL("image"); ok {
		replaced = account.Image
		account.Image = url
	}

	if err := s.repo.Update(ctx, account); err != nil {
		_ = batch.Rollback(ctx)
		return nil, translateWriteError(err)
	}

	if replaced != "" {
		_ = s.uploader.Discard(ctx, replaced)
	}

	return account, nil
}

// Delete removes the account and returns the removed record.
func (s *userService) Delete(ctx context.Context, id string) (*entity.Account, error) {
	account, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *userService) find(ctx context.Context, id string) (*entity.Account, error) {
	id = entity.NormalizeID(id)
	if !entity.IsID(id) {
		return nil, apperror.NotFound(msgUserNotFound)
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgUserNotFound)
		}
		return nil, err
	}
	return account, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return apperror.Conflict(msgEmailTaken)
}

func translateWriteError(err error) error {
	if _, ok := database.UniqueViolation(err); ok {
		return apperror.Conflict(msgEmailTaken)
	}
	return err
}
