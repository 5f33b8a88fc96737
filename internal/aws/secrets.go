// internal/aws/secrets.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/unclebandit/togetherunite-backend/internal/config"
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// dbSecret is the JSON layout of an RDS managed credentials secret.
type dbSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
}

// ResolveDatabaseCredentials fills credentials from the secret named by
// cfg.SecretARN. Values present in the secret override cfg.
func ResolveDatabaseCredentials(ctx context.Context, awsCfg awssdk.Config, cfg config.DatabaseConfig) (config.DatabaseConfig, error) {
	if cfg.SecretARN == "" {
		return cfg, nil
	}
	return resolveDatabaseCredentials(ctx, secretsmanager.NewFromConfig(awsCfg), cfg)
}

func resolveDatabaseCredentials(ctx context.Context, client secretsAPI, cfg config.DatabaseConfig) (config.DatabaseConfig, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: awssdk.String(cfg.SecretARN)})
	if err != nil {
		return cfg, fmt.Errorf("get database secret: %w", err)
	}
	var s dbSecret
	if err := json.Unmarshal([]byte(awssdk.ToString(out.SecretString)), &s); err != nil {
		return cfg, fmt.Errorf("decode database secret: %w", err)
	}
	if s.Username != "" {
		cfg.User = s.Username
	}
	if s.Password != "" {
		cfg.Password = s.Password
	}
	if s.Host != "" {
		cfg.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Port = s.Port
	}
	if s.DBName != "" {
		cfg.Name = s.DBName
	}
	return cfg, nil
}
