package registry

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/ferry/internal/logger"
	"github.com/marmos91/ferry/pkg/storage"
	badgerstore "github.com/marmos91/ferry/pkg/storage/badger"
	fsstore "github.com/marmos91/ferry/pkg/storage/fs"
	"github.com/marmos91/ferry/pkg/storage/memory"
	s3store "github.com/marmos91/ferry/pkg/storage/s3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeOptions decodes an option map into a typed config struct and runs
// its validation tags.
func decodeOptions(options map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("failed to create options decoder: %w", err)
	}

	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("failed to decode options: %w", err)
	}

	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	return nil
}

// memoryFactory creates an ephemeral in-memory store. It takes no options.
func memoryFactory(ctx context.Context, _ map[string]any) (storage.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return memory.New(), nil
}

// filesystemFactory creates a store over a local directory.
//
// Options:
//   - path: root directory (required)
func filesystemFactory(ctx context.Context, options map[string]any) (storage.Store, error) {
	var cfg struct {
		Path string `mapstructure:"path" validate:"required"`
	}
	if err := decodeOptions(options, &cfg); err != nil {
		return nil, fmt.Errorf("filesystem store: %w", err)
	}

	return fsstore.New(ctx, cfg.Path)
}

// badgerFactory creates a persistent embedded store backed by BadgerDB.
//
// Options:
//   - path: database directory (required unless in_memory)
//   - in_memory: run without touching disk
func badgerFactory(ctx context.Context, options map[string]any) (storage.Store, error) {
	var cfg struct {
		Path     string `mapstructure:"path"`
		InMemory bool   `mapstructure:"in_memory"`
	}
	if err := decodeOptions(options, &cfg); err != nil {
		return nil, fmt.Errorf("badger store: %w", err)
	}

	return badgerstore.New(ctx, badgerstore.Config{
		Path:     cfg.Path,
		InMemory: cfg.InMemory,
	})
}

// s3Factory creates a store over an S3 (or S3-compatible) bucket.
//
// Options:
//   - bucket: bucket name (required)
//   - prefix: key prefix inside the bucket
//   - region: AWS region (default credential chain applies when empty)
//   - endpoint: custom endpoint for MinIO, Localstack, Cubbit DS3, etc.
//   - access_key_id / secret_access_key: static credentials
//   - max_retries: retry attempts for transient failures (default 10)
func s3Factory(ctx context.Context, options map[string]any) (storage.Store, error) {
	var cfg struct {
		Bucket          string `mapstructure:"bucket" validate:"required"`
		Prefix          string `mapstructure:"prefix"`
		Region          string `mapstructure:"region"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}
	if err := decodeOptions(options, &cfg); err != nil {
		return nil, fmt.Errorf("s3 store: %w", err)
	}

	var configOptions []func(*awsConfig.LoadOptions) error

	if cfg.Region != "" {
		configOptions = append(configOptions, awsConfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	// Retry transient failures (502, 503, timeouts) more aggressively than
	// the SDK default of 3 attempts.
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing for MinIO/Localstack compatibility.
			o.UsePathStyle = true
		}
	})

	store, err := s3store.New(ctx, s3store.Config{
		Client: client,
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("S3 store initialized: bucket=%s region=%s prefix=%s",
		cfg.Bucket, cfg.Region, cfg.Prefix)

	return store, nil
}
