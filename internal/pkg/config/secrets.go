// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Secret keys read from the secret store
const (
	SecretDatabasePassword = "DB_PASSWORD"
	SecretRedisPassword    = "REDIS_PASSWORD"
)

// SecretsProvider resolves named secrets
type SecretsProvider interface {
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}

// SecretValueGetter is the subset of the Secrets Manager client in use
type SecretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager reads a JSON key/value secret from AWS Secrets Manager
type AWSSecretsManager struct {
	client     SecretValueGetter
	secretName string
	cache      map[string]string
	cacheMu    sync.RWMutex
	lastFetch  time.Time
	ttl        time.Duration
	logger     *slog.Logger
}

// NewAWSSecretsManager creates a new AWS Secrets Manager client
func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewAWSSecretsManagerWithClient(secretsmanager.NewFromConfig(cfg), secretName, logger), nil
}

// NewAWSSecretsManagerWithClient wraps an existing client
func NewAWSSecretsManagerWithClient(client SecretValueGetter, secretName string, logger *slog.Logger) *AWSSecretsManager {
	return &AWSSecretsManager{
		client:     client,
		secretName: secretName,
		cache:      make(map[string]string),
		ttl:        5 * time.Minute,
		logger:     logger,
	}
}

// GetSecrets retrieves multiple secrets, served from cache within the TTL
func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	sm.cacheMu.RLock()
	if time.Since(sm.lastFetch) < sm.ttl && len(sm.cache) > 0 {
		cached := filterSecrets(sm.cache, keys)
		sm.cacheMu.RUnlock()
		if len(cached) == len(keys) {
			return cached, nil
		}
	} else {
		sm.cacheMu.RUnlock()
	}

	sm.logger.Info("fetching secrets from AWS Secrets Manager",
		slog.String("secret_name", sm.secretName))

	result, err := sm.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}
	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", sm.secretName)
	}

	var secretData map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &secretData); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	sm.cacheMu.Lock()
	sm.cache = secretData
	sm.lastFetch = time.Now()
	sm.cacheMu.Unlock()

	return filterSecrets(secretData, keys), nil
}

func filterSecrets(all map[string]string, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := all[key]; ok {
			out[key] = val
		}
	}
	return out
}

// EnvSecretsManager implements secrets management using environment variables
type EnvSecretsManager struct{}

// GetSecrets retrieves multiple secrets from environment variables
func (EnvSecretsManager) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	secrets := make(map[string]string)
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			secrets[key] = val
		}
	}
	return secrets, nil
}

// ApplySecrets overrides credentials in cfg with values from the provider.
// Keys missing from the store leave the current value in place.
func ApplySecrets(ctx context.Context, cfg *Config, provider SecretsProvider) error {
	secrets, err := provider.GetSecrets(ctx, []string{SecretDatabasePassword, SecretRedisPassword})
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if v, ok := secrets[SecretDatabasePassword]; ok {
		cfg.Database.Password = v
	}
	if v, ok := secrets[SecretRedisPassword]; ok {
		cfg.Redis.Password = v
		cfg.Asynq.RedisPassword = v
	}
	return nil
}
