package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidSecret = errors.New("invalid secret")

const roleSessionName = "dubber"

// AzureCredentials is the fixed schema of the speech service secret.
type AzureCredentials struct {
	APIKey string `json:"AZURE_API_KEY"`
	Region string `json:"AZURE_REGION"`
}

func (c AzureCredentials) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: AZURE_API_KEY is empty", ErrInvalidSecret)
	}
	if c.Region == "" {
		return fmt.Errorf("%w: AZURE_REGION is empty", ErrInvalidSecret)
	}
	return nil
}

// String masks the key so credentials can be logged.
func (c AzureCredentials) String() string {
	key := ""
	if c.APIKey != "" {
		key = "********"
	}
	return fmt.Sprintf("{region:%s apikey:%s}", c.Region, key)
}

type Provider interface {
	AzureCredentials(ctx context.Context) (AzureCredentials, error)
}

// ParseAzureCredentials decodes a secret string. Only a JSON object with the
// two known keys is accepted.
func ParseAzureCredentials(secret string) (AzureCredentials, error) {
	var creds AzureCredentials
	dec := json.NewDecoder(bytes.NewReader([]byte(secret)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&creds); err != nil {
		return AzureCredentials{}, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if dec.More() {
		return AzureCredentials{}, fmt.Errorf("%w: trailing data", ErrInvalidSecret)
	}
	if err := creds.validate(); err != nil {
		return AzureCredentials{}, err
	}
	return creds, nil
}

// StaticProvider always returns the same credentials.
type StaticProvider struct {
	Creds AzureCredentials
}

func (p *StaticProvider) AzureCredentials(_ context.Context) (AzureCredentials, error) {
	if err := p.Creds.validate(); err != nil {
		return AzureCredentials{}, err
	}
	return p.Creds, nil
}

// NewEnvProvider reads AZURE_API_KEY and AZURE_REGION. It returns nil when
// either is unset.
func NewEnvProvider() Provider {
	creds := AzureCredentials{
		APIKey: os.Getenv("AZURE_API_KEY"),
		Region: os.Getenv("AZURE_REGION"),
	}
	if creds.validate() != nil {
		return nil
	}
	return &StaticProvider{Creds: creds}
}

type secretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerProvider fetches the credentials from AWS Secrets Manager on
// every call, so rotated secrets are picked up without a restart.
type SecretsManagerProvider struct {
	client     secretGetter
	secretName string
}

// NewSecretsManagerProvider builds a client in region. When roleARN is set the
// client assumes that role through STS first.
func NewSecretsManagerProvider(ctx context.Context, secretName, region, roleARN string) (*SecretsManagerProvider, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}
	if roleARN != "" {
		log.Infof("Assuming role %s for secret %s", roleARN, secretName)
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), roleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = roleSessionName
			})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}
	return newSecretsManagerProvider(secretsmanager.NewFromConfig(cfg), secretName), nil
}

func newSecretsManagerProvider(client secretGetter, secretName string) *SecretsManagerProvider {
	return &SecretsManagerProvider{client: client, secretName: secretName}
}

func (p *SecretsManagerProvider) AzureCredentials(ctx context.Context) (AzureCredentials, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretName),
	})
	if err != nil {
		log.Errorf("Error retrieving secret %s: %v", p.secretName, err)
		return AzureCredentials{}, fmt.Errorf("error retrieving secret %s: %w", p.secretName, err)
	}
	if out.SecretString == nil {
		return AzureCredentials{}, fmt.Errorf("%w: secret %s has no string value", ErrInvalidSecret, p.secretName)
	}
	creds, err := ParseAzureCredentials(*out.SecretString)
	if err != nil {
		return AzureCredentials{}, fmt.Errorf("error parsing secret %s: %w", p.secretName, err)
	}
	log.Debugf("Loaded credentials from secret %s: %v", p.secretName, creds)
	return creds, nil
}
