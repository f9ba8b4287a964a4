package settings

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/matinee/matinee/internal/crypto"
)

// Setting keys.
const (
	KeyCatalogToken = "catalog_token"
	KeyTheme        = "theme"
	keySecretSalt   = "secret_salt"
)

// Themes the dashboard can render.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const defaultTheme = ThemeDark

var (
	ErrInvalidTheme    = errors.New("theme must be light or dark")
	errNotBootstrapped = errors.New("settings service is not bootstrapped")
)

// Service stores user settings in the settings table. The catalog token is
// encrypted at rest; everything else is plain text.
type Service struct {
	db      *sql.DB
	secrets *crypto.SecretStore
}

// NewService creates a new settings service. Bootstrap must run before any
// token access.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Bootstrap loads or creates the persistent salt and derives the token
// encryption key from the configured secret. Running it again with the same
// secret yields the same key, so tokens survive restarts.
func (s *Service) Bootstrap(ctx context.Context, secretKey string) error {
	salt, err := s.getString(ctx, keySecretSalt)
	if errors.Is(err, sql.ErrNoRows) {
		raw, genErr := crypto.GenerateSalt()
		if genErr != nil {
			return fmt.Errorf("failed to generate salt: %w", genErr)
		}
		salt = base64.StdEncoding.EncodeToString(raw)
		if err := s.setString(ctx, keySecretSalt, salt); err != nil {
			return fmt.Errorf("failed to store salt: %w", err)
		}
	} else if err != nil {
		return err
	}

	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return fmt.Errorf("failed to decode stored salt: %w", err)
	}

	s.secrets = crypto.NewSecretStore(secretKey, saltBytes)
	return nil
}

// Token returns the stored catalog token, or "" when none is set.
func (s *Service) Token(ctx context.Context) (string, error) {
	if s.secrets == nil {
		return "", errNotBootstrapped
	}

	value, err := s.getString(ctx, KeyCatalogToken)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.secrets.MustDecrypt(value), nil
}

// SetToken stores the catalog token, encrypted at rest. An empty token
// clears the stored value.
func (s *Service) SetToken(ctx context.Context, token string) error {
	if s.secrets == nil {
		return errNotBootstrapped
	}

	encrypted, err := s.secrets.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	return s.setString(ctx, KeyCatalogToken, encrypted)
}

// Theme returns the stored theme preference, defaulting to dark.
func (s *Service) Theme(ctx context.Context) (string, error) {
	value, err := s.getString(ctx, KeyTheme)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultTheme, nil
	}
	if err != nil {
		return "", err
	}
	if value != ThemeLight && value != ThemeDark {
		return defaultTheme, nil
	}
	return value, nil
}

// SetTheme stores the theme preference.
func (s *Service) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return ErrInvalidTheme
	}
	return s.setString(ctx, KeyTheme, theme)
}

func (s *Service) getString(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Service) setString(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}
