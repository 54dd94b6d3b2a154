package profile

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"cryptofolio/internal/application"
)

// TokenManager mints and verifies the HMAC-signed session tokens that carry
// the profile id between requests.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Mint issues a session token for the profile. The embedded token id allows
// server-side revocation.
func (m *TokenManager) Mint(userID string) (string, error) {
	token, _, _, err := m.mint(userID)
	return token, err
}

func (m *TokenManager) mint(userID string) (token, tokenID string, expiresAt time.Time, err error) {
	jti := make([]byte, 16)
	if _, err = rand.Read(jti); err != nil {
		return "", "", time.Time{}, err
	}
	tokenID = hex.EncodeToString(jti)

	now := time.Now()
	expiresAt = now.Add(m.ttl)
	claims := jwt.StandardClaims{
		Id:        tokenID,
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return token, tokenID, expiresAt, err
}

// Verify checks signature and expiry and returns the embedded profile id.
func (m *TokenManager) Verify(tokenStr string) (string, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (m *TokenManager) parse(tokenStr string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, application.ErrAuthRequired
	}
	if claims.Subject == "" {
		return nil, application.ErrAuthRequired
	}
	return claims, nil
}

// Auth ties the token manager to the profile store: sign-in records a session
// row so sign-out can revoke it before the token expires.
type Auth struct {
	store  *Store
	tokens *TokenManager
}

func NewAuth(store *Store, tokens *TokenManager) *Auth {
	return &Auth{store: store, tokens: tokens}
}

func (a *Auth) SignUp(ctx context.Context, email, password string) (string, error) {
	return a.store.Register(ctx, email, password)
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (string, error) {
	userID, err := a.store.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, tokenID, expiresAt, err := a.tokens.mint(userID)
	if err != nil {
		return "", err
	}
	if err := a.store.CreateSession(ctx, tokenID, userID, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func (a *Auth) SignOut(ctx context.Context, token string) error {
	claims, err := a.tokens.parse(token)
	if err != nil {
		return err
	}
	return a.store.RevokeSession(ctx, claims.Id)
}

// CurrentUser resolves the profile id behind a token, rejecting revoked
// sessions.
func (a *Auth) CurrentUser(ctx context.Context, token string) (string, error) {
	claims, err := a.tokens.parse(token)
	if err != nil {
		return "", err
	}
	active, err := a.store.SessionActive(ctx, claims.Id)
	if err != nil {
		return "", err
	}
	if !active {
		return "", application.ErrAuthRequired
	}
	return claims.Subject, nil
}
