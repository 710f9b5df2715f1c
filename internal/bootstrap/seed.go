package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/welfaredesk/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Account{},
		&entity.Beneficiary{},
		&entity.Token{},
		&entity.TokenAction{},
		&entity.Action{},
	)
}

// SeedAdmin creates the first admin account so that registration, which is
// admin only, can be reached at all. It does nothing when the email is empty
// or already taken.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password string, log *zap.Logger) error {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		log.Info("admin seed skipped, no credentials configured")
		return nil
	}

	var existing entity.Account
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Info("admin user already exists, skipping seed", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := entity.Account{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hashed),
		Role:         entity.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	log.Info("admin user seeded", zap.String("email", email))
	return nil
}
