package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"grocerly-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CredentialRepository persists admin credentials.
type CredentialRepository interface {
	Count(ctx context.Context) (int, error)
	GetHash(ctx context.Context, username string) (string, error)
	Insert(ctx context.Context, principal, username, hash string) error
	UpdateHash(ctx context.Context, username, hash string) error
	GetPrincipal(ctx context.Context, username string) (string, error)
}

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_credentials`).Scan(&n)
	return n, err
}

func (r *credentialRepository) GetHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM admin_credentials WHERE username = $1`,
		username,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrInvalidCredentials
	}
	return hash, err
}

func (r *credentialRepository) GetPrincipal(ctx context.Context, username string) (string, error) {
	var principal string
	err := r.db.QueryRowContext(ctx,
		`SELECT principal FROM admin_credentials WHERE username = $1`,
		username,
	).Scan(&principal)
	if err == sql.ErrNoRows {
		return "", ErrInvalidCredentials
	}
	return principal, err
}

func (r *credentialRepository) Insert(ctx context.Context, principal, username, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_credentials (principal, username, password_hash, rotated_at)
		VALUES ($1, $2, $3, NOW())
	`, principal, username, hash)
	return err
}

func (r *credentialRepository) UpdateHash(ctx context.Context, username, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE admin_credentials
		SET password_hash = $1, rotated_at = $2
		WHERE username = $3
	`, hash, time.Now(), username)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidCredentials
	}
	return nil
}

// CredentialService owns the admin bootstrap / login / rotation flow.
type CredentialService interface {
	Bootstrap(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	Rotate(ctx context.Context, username, newPassword string) error
}

type credentialService struct {
	repo CredentialRepository
}

func NewCredentialService(repo CredentialRepository) CredentialService {
	return &credentialService{repo: repo}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Bootstrap creates the first admin. Refused once any credential exists.
func (s *credentialService) Bootstrap(ctx context.Context, username, password string) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing credentials: %w", err)
	}
	if n > 0 {
		return ErrAlreadyBootstrapped
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	principal := "admin-" + uuid.New().String()
	if err := s.repo.Insert(ctx, principal, username, hash); err != nil {
		return fmt.Errorf("failed to store admin credentials: %w", err)
	}

	logger.FromCtx(ctx).Info("initial admin bootstrapped", zap.String("username", username))
	return nil
}

func (s *credentialService) Login(ctx context.Context, username, password string) (string, error) {
	hash, err := s.repo.GetHash(ctx, username)
	if err != nil {
		return "", err
	}

	if !CheckPasswordHash(password, hash) {
		return "", ErrInvalidCredentials
	}

	principal, err := s.repo.GetPrincipal(ctx, username)
	if err != nil {
		return "", err
	}

	return GenerateToken(principal, RoleAdmin)
}

// Rotate replaces the stored hash. Admin-gated; the claim is re-verified here.
func (s *credentialService) Rotate(ctx context.Context, username, newPassword string) error {
	if err := RequireAdmin(ctx); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateHash(ctx, username, hash); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("admin credentials rotated", zap.String("username", username))
	return nil
}
