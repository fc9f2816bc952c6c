// Package auth verifies the stored credential pair. Passwords are hashed on
// write and compared by digest on read, so the storage format can change
// without touching the HTTP layer.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Default credential seeded on first run when the credentials table is empty.
const (
	DefaultUsername = "admin"
	DefaultPassword = "Admin@123"
)

// CredentialStore is the slice of the repository the verifier needs.
type CredentialStore interface {
	CredentialCount(ctx context.Context) (int64, error)
	CredentialHash(ctx context.Context, username string) (hash string, found bool, err error)
	InsertCredential(ctx context.Context, username, passwordHash string) error
}

// Verifier checks username/password pairs against hashed credentials.
type Verifier struct {
	store CredentialStore
}

func NewVerifier(store CredentialStore) *Verifier {
	return &Verifier{store: store}
}

// Verify reports whether the pair matches a stored credential. A missing user
// or wrong password is a normal false, never an error; only store faults are.
func (v *Verifier) Verify(ctx context.Context, username, password string) (bool, error) {
	hash, found, err := v.store.CredentialHash(ctx, username)
	if err != nil {
		return false, fmt.Errorf("look up credential: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// Register hashes and stores a new credential pair.
func (v *Verifier) Register(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := v.store.InsertCredential(ctx, username, string(hash)); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

// Seed inserts the default admin credential iff no credential exists yet.
// Safe to call on every process start.
func (v *Verifier) Seed(ctx context.Context) error {
	n, err := v.store.CredentialCount(ctx)
	if err != nil {
		return fmt.Errorf("count credentials: %w", err)
	}
	if n > 0 {
		return nil
	}
	if err := v.Register(ctx, DefaultUsername, DefaultPassword); err != nil {
		return fmt.Errorf("seed default credential: %w", err)
	}
	slog.InfoContext(ctx, "Seeded default admin user", "username", DefaultUsername)
	return nil
}
