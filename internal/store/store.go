package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store persists table layouts, operator accounts and session summaries.
// Physics state is never stored.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}
