// Package aws collects EKS, EC2, EFS, S3 and IAM metadata that frames a
// prediction: what the cluster is, where job data lives, and what the
// job identity may touch. Every lookup is best-effort.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"preflight/pkg/config"
)

// NewAWSConfig loads AWS configuration with the configured region and
// optional static credentials. Empty credentials fall back to the
// default chain (env, shared config, IRSA).
func NewAWSConfig(ctx context.Context, cfg *config.AWSConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg != nil && cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg != nil && cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	return awsconfig.LoadDefaultConfig(ctx, opts...)
}
