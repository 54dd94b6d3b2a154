package profile

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"cryptofolio/internal/application"
	"cryptofolio/internal/application/port"
)

// Store persists user profiles and their exchange API keys in Postgres.
// It is the CredentialSource for the aggregation services: keys are read
// fresh on every call and never cached here.
type Store struct {
	db *sql.DB
}

func New(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS profiles (
  id BIGSERIAL PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_digest TEXT NOT NULL,
  salt TEXT NOT NULL,
  api_keys TEXT NOT NULL DEFAULT '{}',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
  token_id TEXT PRIMARY KEY,
  user_id BIGINT NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL,
  revoked BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`)
	return err
}

// storedKeys is the api_keys column layout.
type storedKeys struct {
	Binance  *storedPair `json:"binance,omitempty"`
	Coinbase *storedPair `json:"coinbase,omitempty"`
}

type storedPair struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
}

// Register creates a profile and returns its id.
func (s *Store) Register(ctx context.Context, email, password string) (string, error) {
	salt, err := newSalt()
	if err != nil {
		return "", err
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO profiles(email, password_digest, salt) VALUES($1, $2, $3) RETURNING id`,
		email, digest(salt, password), salt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("register profile failed: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// Authenticate verifies the password and returns the profile id.
func (s *Store) Authenticate(ctx context.Context, email, password string) (string, error) {
	var (
		id         int64
		storedHash string
		salt       string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_digest, salt FROM profiles WHERE email = $1`, email,
	).Scan(&id, &storedHash, &salt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", application.ErrAuthRequired
	}
	if err != nil {
		return "", err
	}

	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(digest(salt, password))) != 1 {
		return "", application.ErrAuthRequired
	}
	return fmt.Sprintf("%d", id), nil
}

// SaveAPIKeys replaces the stored exchange keys of the profile.
func (s *Store) SaveAPIKeys(ctx context.Context, userID string, creds port.Credentials) error {
	keys := storedKeys{}
	if creds.Binance != nil {
		keys.Binance = &storedPair{APIKey: creds.Binance.APIKey, SecretKey: creds.Binance.SecretKey}
	}
	if creds.Coinbase != nil {
		keys.Coinbase = &storedPair{APIKey: creds.Coinbase.APIKey, SecretKey: creds.Coinbase.SecretKey}
	}

	payload, err := json.Marshal(keys)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET api_keys = $1 WHERE id = $2`, string(payload), userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %s not found", userID)
	}
	return nil
}

// APIKeys loads the exchange keys of the profile. Unconfigured exchanges come
// back nil.
func (s *Store) APIKeys(ctx context.Context, userID string) (port.Credentials, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT api_keys FROM profiles WHERE id = $1`, userID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return port.Credentials{}, application.ErrAuthRequired
	}
	if err != nil {
		return port.Credentials{}, err
	}

	var keys storedKeys
	if err := json.Unmarshal([]byte(payload), &keys); err != nil {
		return port.Credentials{}, fmt.Errorf("decode stored keys failed: %w", err)
	}

	var creds port.Credentials
	if keys.Binance != nil && keys.Binance.APIKey != "" {
		creds.Binance = &port.ExchangeKeys{APIKey: keys.Binance.APIKey, SecretKey: keys.Binance.SecretKey}
	}
	if keys.Coinbase != nil && keys.Coinbase.APIKey != "" {
		creds.Coinbase = &port.ExchangeKeys{APIKey: keys.Coinbase.APIKey, SecretKey: keys.Coinbase.SecretKey}
	}
	return creds, nil
}

// CreateSession records a minted token so it can be revoked later.
func (s *Store) CreateSession(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(token_id, user_id, expires_at) VALUES($1, $2::bigint, $3)`,
		tokenID, userID, expiresAt)
	return err
}

// RevokeSession marks the session row revoked. Revoking an unknown token is
// a no-op.
func (s *Store) RevokeSession(ctx context.Context, tokenID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked = true WHERE token_id = $1`, tokenID)
	return err
}

// SessionActive reports whether the session exists and has not been revoked.
func (s *Store) SessionActive(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx,
		`SELECT revoked FROM sessions WHERE token_id = $1`, tokenID,
	).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !revoked, nil
}

var _ port.CredentialSource = (*Store)(nil)

func newSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func digest(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
