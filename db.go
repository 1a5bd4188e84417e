package main

import (
	"context"
	"errors"
	"os"

	"screentext/models"
	"screentext/pkg/store"
)

// initDB seeds the first administrator when the operators table is empty.
// Tables were already migrated by app.Build when DB_AUTO_MIGRATE is on.
// Without a database there is nothing to do: logins go against
// OPERATOR_USER/OPERATOR_PASSWORD_HASH.
func (s *server) initDB(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Operator{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.seedAdmin(ctx)
}

// seedAdmin creates the configured operator as administrator. The password
// comes from ADMIN_PASSWORD; OPERATOR_PASSWORD_HASH is copied as is when only
// a hash is available.
func (s *server) seedAdmin(ctx context.Context) error {
	user := s.cfg.OperatorUser
	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		_, err := store.CreateOperator(ctx, s.db, user, pw, store.RoleAdministrator)
		if errors.Is(err, store.ErrOperatorExists) {
			return nil
		}
		if err == nil {
			s.log.Info("seeded administrator", "username", user)
		}
		return err
	}
	if s.cfg.OperatorPasswordHash == "" {
		s.log.Warn("no operators and no ADMIN_PASSWORD or OPERATOR_PASSWORD_HASH; nobody can log in")
		return nil
	}
	op := models.Operator{Username: user, HashedPassword: []byte(s.cfg.OperatorPasswordHash), Role: store.RoleAdministrator}
	if err := s.db.WithContext(ctx).Create(&op).Error; err != nil {
		return err
	}
	s.log.Info("seeded administrator from password hash", "username", user)
	return nil
}
