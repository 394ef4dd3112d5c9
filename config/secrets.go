package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrSecretNotFound = errors.New("secret not found")

// SecretStore returns a named credential bundle (signing keys, OAuth client credentials).
type SecretStore interface {
	GetSecret(ctx context.Context, id string) (map[string]string, error)
}

// EnvSecretStore reads bundles stored as JSON objects in environment variables.
// The variable name is the secret id.
type EnvSecretStore struct{}

func NewEnvSecretStore() *EnvSecretStore {
	return &EnvSecretStore{}
}

func (s *EnvSecretStore) GetSecret(_ context.Context, id string) (map[string]string, error) {
	raw := os.Getenv(id)
	if raw == "" {
		return nil, fmt.Errorf("%s: %w", id, ErrSecretNotFound)
	}

	var bundle map[string]string
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode secret %s: %w", id, err)
	}
	return bundle, nil
}

// StaticSecretStore serves fixed bundles. Used for local runs and tests.
type StaticSecretStore struct {
	secrets map[string]map[string]string
}

func NewStaticSecretStore(secrets map[string]map[string]string) *StaticSecretStore {
	if secrets == nil {
		secrets = make(map[string]map[string]string)
	}
	return &StaticSecretStore{secrets: secrets}
}

func (s *StaticSecretStore) GetSecret(_ context.Context, id string) (map[string]string, error) {
	bundle, ok := s.secrets[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSecretNotFound)
	}

	out := make(map[string]string, len(bundle))
	for k, v := range bundle {
		out[k] = v
	}
	return out, nil
}
