package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubnight-api/config"
	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 24 * time.Hour

	RoleUser = "user"
	RoleClub = "club"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// TokenPair is returned by every successful login
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService signs and verifies HS256 tokens with keys read from the secret store.
type TokenService struct {
	secrets    config.SecretStore
	secretName string
	now        func() time.Time
}

func NewTokenService(secrets config.SecretStore, secretName string) *TokenService {
	return &TokenService{secrets: secrets, secretName: secretName, now: time.Now}
}

func (s *TokenService) keys(ctx context.Context) (access, refresh []byte, err error) {
	bundle, err := s.secrets.GetSecret(ctx, s.secretName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load signing keys: %w", err)
	}
	if bundle["jwt_secret"] == "" || bundle["refresh_secret"] == "" {
		return nil, nil, fmt.Errorf("signing keys missing from secret %s", s.secretName)
	}
	return []byte(bundle["jwt_secret"]), []byte(bundle["refresh_secret"]), nil
}

func (s *TokenService) sign(subject, role string, ttl time.Duration, key []byte) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"email": subject,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// IssueAccessToken returns a signed access token for subject
func (s *TokenService) IssueAccessToken(ctx context.Context, subject, role string) (string, error) {
	access, _, err := s.keys(ctx)
	if err != nil {
		return "", err
	}
	return s.sign(subject, role, accessTokenTTL, access)
}

// IssuePair returns a fresh access and refresh token for subject
func (s *TokenService) IssuePair(ctx context.Context, subject, role string) (*TokenPair, error) {
	access, refresh, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.sign(subject, role, accessTokenTTL, access)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sign(subject, role, refreshTokenTTL, refresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess validates an access token and returns its subject and role.
func (s *TokenService) VerifyAccess(ctx context.Context, tokenString string) (string, string, error) {
	access, _, err := s.keys(ctx)
	if err != nil {
		return "", "", err
	}
	return s.verify(tokenString, access)
}

// VerifyRefresh validates a refresh token and returns its subject and role.
func (s *TokenService) VerifyRefresh(ctx context.Context, tokenString string) (string, string, error) {
	_, refresh, err := s.keys(ctx)
	if err != nil {
		return "", "", err
	}
	return s.verify(tokenString, refresh)
}

func (s *TokenService) verify(tokenString string, key []byte) (string, string, error) {
	if tokenString == "" {
		return "", "", ErrMissingToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrExpiredToken
		}
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}
	subject, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if subject == "" {
		return "", "", ErrInvalidToken
	}
	return subject, role, nil
}
