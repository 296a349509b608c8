// Package awsauth loads AWS credentials for the SES transport and reports
// which identity they belong to.
package awsauth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Identity is the caller identity behind the loaded credentials.
type Identity struct {
	Account string
	UserID  string
	ARN     string
}

func (i Identity) String() string {
	return fmt.Sprintf("Account: %s UserID: %s ARN: %s", i.Account, i.UserID, i.ARN)
}

// CallerIdentityAPI is the part of the sts client used here.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// LoadConfig loads the default AWS config. A non-empty profile selects a
// shared config profile (SSO included); region overrides the profile's one.
func LoadConfig(ctx context.Context, region string, profile string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

// NewSTSClient returns an sts client for cfg.
func NewSTSClient(cfg aws.Config) *sts.Client {
	return sts.NewFromConfig(cfg)
}

// CallerIdentity asks sts who the credentials belong to.
func CallerIdentity(ctx context.Context, client CallerIdentityAPI) (Identity, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to get caller identity: %w", err)
	}
	return Identity{
		Account: aws.ToString(out.Account),
		UserID:  aws.ToString(out.UserId),
		ARN:     aws.ToString(out.Arn),
	}, nil
}
