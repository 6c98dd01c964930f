package config

// This file implements the secret store accessor. Database
// credentials and the mage API key live in AWS Secrets Manager under
// logical names carried in Config; only the names and the region are
// configuration, never the credentials themselves. For local
// development every secret field can be overridden through an
// environment variable, which also keeps the test suite away from the
// network.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// DBCredentials is the JSON shape of the database secret.
type DBCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MageCredentials is the JSON shape of the mage (text generation) secret.
type MageCredentials struct {
	APIKey string `json:"api_key"`
}

// SecretStore fetches named secrets from AWS Secrets Manager.
type SecretStore struct {
	client *secretsmanager.Client
}

// NewSecretStore builds a SecretStore for the given region using the
// default AWS credential chain.
func NewSecretStore(ctx context.Context, region string) (*SecretStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SecretStore{client: secretsmanager.NewFromConfig(awsCfg)}, nil
}

// fetch retrieves the raw secret string for a logical name. Errors
// never include the secret value.
func (s *SecretStore) fetch(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &name})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string payload", name)
	}
	return *out.SecretString, nil
}

// DBCredentials resolves the database secret. DB_USER/DB_PASS env
// variables take precedence so local runs need no AWS access.
func (s *SecretStore) DBCredentials(ctx context.Context, name string) (DBCredentials, error) {
	if u := os.Getenv("DB_USER"); u != "" {
		return DBCredentials{Username: u, Password: os.Getenv("DB_PASS")}, nil
	}
	raw, err := s.fetch(ctx, name)
	if err != nil {
		return DBCredentials{}, err
	}
	var creds DBCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return DBCredentials{}, fmt.Errorf("decode secret %s: %w", name, err)
	}
	return creds, nil
}

// MageCredentials resolves the mage API key. MAGE_API_KEY takes
// precedence; an empty result simply leaves the mage disabled.
func (s *SecretStore) MageCredentials(ctx context.Context, name string) (MageCredentials, error) {
	if k := os.Getenv("MAGE_API_KEY"); k != "" {
		return MageCredentials{APIKey: k}, nil
	}
	if name == "" {
		return MageCredentials{}, nil
	}
	raw, err := s.fetch(ctx, name)
	if err != nil {
		return MageCredentials{}, err
	}
	var creds MageCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return MageCredentials{}, fmt.Errorf("decode secret %s: %w", name, err)
	}
	return creds, nil
}
