package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
)

// Account is a registered user without its password hash.
type Account struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Register creates an account. The password is stored as a bcrypt hash.
func (d *DB) Register(ctx context.Context, name, email, password string) (*Account, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return nil, apperr.NewValidationError("name is required")
	case email == "":
		return nil, apperr.NewValidationError("email is required")
	case password == "":
		return nil, apperr.NewValidationError("password is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.NewValidationError(fmt.Sprintf("invalid email %q", email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.hashCost)
	if err != nil {
		return nil, fmt.Errorf("Register hash: %w", err)
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	acct := &Account{ID: models.NewID(), Name: name, Email: email, CreatedAt: time.Now().UTC()}
	_, err = conn.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		acct.ID, acct.Name, acct.Email, string(hash), formatTime(acct.CreatedAt),
	)
	if isUniqueViolation(err) {
		return nil, apperr.NewConflictError(fmt.Sprintf("email %q is already registered", email))
	}
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}
	d.logger.Info("account registered", zap.String("user_id", acct.ID))
	return acct, nil
}

// Authenticate verifies the password for email. Unknown emails and wrong
// passwords both fail with NotFound.
func (d *DB) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	email = normalizeEmail(email)

	conn, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var acct Account
	var hash, created string
	err = conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&acct.ID, &acct.Name, &acct.Email, &hash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFoundError("account")
	}
	if err != nil {
		return nil, fmt.Errorf("Authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apperr.NewNotFoundError("account")
	}
	if acct.CreatedAt, err = parseTime(created); err != nil {
		return nil, apperr.NewCorruptError("account timestamp", err)
	}
	return &acct, nil
}

// normalizeEmail is the form emails are stored and looked up in.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
