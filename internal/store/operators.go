package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/playmatatu/pinball/internal/models"
)

// HashPassword hashes an operator secret with bcrypt.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UpsertOperator creates the operator or resets its password.
func (s *Store) UpsertOperator(ctx context.Context, username, password string) (*models.Operator, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("operator username and password are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	var op models.Operator
	err = s.db.GetContext(ctx, &op, `
		INSERT INTO operators (username, password_hash, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id, username, password_hash, created_at, last_login_at
	`, username, hash)
	if err != nil {
		return nil, fmt.Errorf("upsert operator %q: %w", username, err)
	}
	return &op, nil
}

// Authenticate checks the credentials and records the login.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.Operator, error) {
	var op models.Operator
	err := s.db.GetContext(ctx, &op, `SELECT id, username, password_hash, created_at, last_login_at FROM operators WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get operator: %w", err)
	}
	if !CheckPassword(op.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE operators SET last_login_at=NOW() WHERE id=$1`, op.ID); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return &op, nil
}
