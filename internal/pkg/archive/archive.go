package archive

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
)

// Archiver keeps a copy of raw signed-contract payloads.
type Archiver interface {
	Store(ctx context.Context, token string, payload []byte, at time.Time) (string, error)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey is contracts/YYYY/MM/<token>.json. Characters outside
// [A-Za-z0-9._-] in the token become "_".
func ObjectKey(token string, at time.Time) string {
	safe := unsafeKeyChars.ReplaceAllString(token, "_")
	if safe == "" {
		safe = "unknown"
	}
	at = at.UTC()
	return fmt.Sprintf("contracts/%04d/%02d/%s.json", at.Year(), int(at.Month()), safe)
}

// Client writes payloads to an S3 compatible bucket.
type Client struct {
	s3Client *s3.Client
	bucket   string
}

func NewClient(ctx context.Context, cfg config.ArchiveConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("archive: %w", config.ErrNotConfigured)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	log.Infof("[Archive] S3 archive enabled for bucket: %s", cfg.Bucket)
	return &Client{s3Client: s3Client, bucket: cfg.Bucket}, nil
}

// Store uploads payload and returns its object key.
func (c *Client) Store(ctx context.Context, token string, payload []byte, at time.Time) (string, error) {
	key := ObjectKey(token, at)
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/json"),
		Metadata: map[string]string{
			"token":       token,
			"archived-at": at.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", key, err)
	}
	log.Infof("[Archive] Stored s3://%s/%s (%d bytes)", c.bucket, key, len(payload))
	return key, nil
}
