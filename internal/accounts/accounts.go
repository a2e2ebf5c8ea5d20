// Package accounts is the credential store: accounts keyed by email, with
// salted password hashes. Records are created on signup and read on login;
// nothing ever mutates or deletes them.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateAccount  = errors.New("email already registered")
	ErrNotFound          = errors.New("account not found")
	ErrInvalidCredential = errors.New("incorrect password")
)

type Account struct {
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Register(ctx context.Context, email, username, password string) error {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT true FROM accounts WHERE email=$1`, email).Scan(&exists)
	if err == nil {
		return ErrDuplicateAccount
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO accounts(email, username, password_hash)
		VALUES ($1, $2, $3)
	`, email, username, hash)
	return err
}

func (r *Repo) Authenticate(ctx context.Context, email, password string) (Account, error) {
	var a Account
	err := r.DB.QueryRow(ctx, `
		SELECT email, username, password_hash, created_at FROM accounts WHERE email=$1
	`, strings.TrimSpace(email)).Scan(&a.Email, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	if !CheckPassword(a.PasswordHash, password) {
		return Account{}, ErrInvalidCredential
	}
	return a, nil
}

// HashPassword produces an irreversible salted hash of the plaintext.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
