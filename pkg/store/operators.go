package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"screentext/models"
)

var (
	ErrOperatorExists     = errors.New("operator already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	RoleAdministrator = "administrator"
	RoleReviewer      = "reviewer"
)

// CreateOperator stores a new operator with a bcrypt hash of password.
func CreateOperator(ctx context.Context, db *gorm.DB, username, password, role string) (models.Operator, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Operator{}, fmt.Errorf("username required")
	}
	if len(password) < 6 {
		return models.Operator{}, fmt.Errorf("password too short (min 6)")
	}
	if role == "" {
		role = RoleReviewer
	}
	if role != RoleAdministrator && role != RoleReviewer {
		return models.Operator{}, fmt.Errorf("unknown role %q", role)
	}
	var existing models.Operator
	if err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error; err == nil {
		return existing, ErrOperatorExists
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Operator{}, err
	}
	op := models.Operator{Username: username, HashedPassword: hashed, Role: role}
	if err := db.WithContext(ctx).Create(&op).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.Operator{}, ErrOperatorExists
		}
		return models.Operator{}, err
	}
	return op, nil
}

// CheckOperator returns the operator when password matches its stored hash.
func CheckOperator(ctx context.Context, db *gorm.DB, username, password string) (models.Operator, error) {
	var op models.Operator
	if err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&op).Error; err != nil {
		return models.Operator{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(op.HashedPassword, []byte(password)); err != nil {
		return models.Operator{}, ErrInvalidCredentials
	}
	return op, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}

// SetOperatorPassword replaces the stored hash of username.
func SetOperatorPassword(ctx context.Context, db *gorm.DB, username, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password too short (min 6)")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res := db.WithContext(ctx).Model(&models.Operator{}).Where("username = ?", strings.TrimSpace(username)).Update("hashed_password", hashed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("operator %q not found", username)
	}
	return nil
}
