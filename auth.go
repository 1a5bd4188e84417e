package main

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"screentext/pkg/app"
	"screentext/pkg/config"
	"screentext/pkg/store"
)

type server struct {
	deps   *app.Deps
	cfg    *config.Config
	log    *slog.Logger
	db     *gorm.DB
	ledger *store.GormLedger
	secret []byte
}

func newServer(deps *app.Deps) *server {
	s := &server{
		deps:   deps,
		cfg:    deps.Config,
		log:    deps.Log,
		db:     deps.DB,
		secret: []byte(deps.Config.JWTSecret),
	}
	if l, ok := deps.Ledger.(*store.GormLedger); ok {
		s.ledger = l
	}
	return s
}

// identity is the authenticated operator. ID is zero for the env operator.
type identity struct {
	ID       uint
	Username string
	Role     string
}

// authenticate checks credentials against the operators table, or against
// OPERATOR_USER and OPERATOR_PASSWORD_HASH when running without a database.
func (s *server) authenticate(ctx context.Context, username, password string) (identity, error) {
	if s.db != nil {
		op, err := store.CheckOperator(ctx, s.db, username, password)
		if err != nil {
			return identity{}, err
		}
		return identity{ID: op.ID, Username: op.Username, Role: op.Role}, nil
	}
	if s.cfg.OperatorPasswordHash == "" || strings.TrimSpace(username) != s.cfg.OperatorUser {
		return identity{}, store.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.OperatorPasswordHash), []byte(password)); err != nil {
		return identity{}, store.ErrInvalidCredentials
	}
	return identity{Username: s.cfg.OperatorUser, Role: store.RoleAdministrator}, nil
}
