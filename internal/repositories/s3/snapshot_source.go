package s3

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ArowuTest/raffle-explorer/internal/logger"
	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ObjectGetter is the part of the S3 client the source needs
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options locate the snapshot object and the credentials to read it with
type Options struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// SnapshotSource reads a published raffle snapshot from an S3 object.
// Keys ending in .json are decoded as JSON, everything else as YAML.
type SnapshotSource struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewSnapshotSource builds an S3 client from opts. Static credentials are used when both keys are set,
// otherwise the default AWS credential chain applies.
func NewSnapshotSource(ctx context.Context, opts Options) (*SnapshotSource, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return NewSnapshotSourceWithClient(client, opts.Bucket, opts.Key), nil
}

// NewSnapshotSourceWithClient creates a SnapshotSource over an existing client
func NewSnapshotSourceWithClient(client ObjectGetter, bucket, key string) *SnapshotSource {
	return &SnapshotSource{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

// FetchRaffles downloads and decodes the snapshot object
func (s *SnapshotSource) FetchRaffles(ctx context.Context) ([]models.Raffle, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)
	}

	var raffles []models.Raffle
	if strings.HasSuffix(strings.ToLower(s.key), ".json") {
		err = json.Unmarshal(body, &raffles)
	} else {
		err = yaml.Unmarshal(body, &raffles)
	}
	if err != nil {
		return nil, fmt.Errorf("decode s3://%s/%s: %w", s.bucket, s.key, err)
	}

	for i := range raffles {
		raffles[i].EndTimestamp = raffles[i].EndTimestamp.UTC()
		if raffles[i].Entrants == nil {
			raffles[i].Entrants = models.EntrantSet{}
		}
	}
	logger.Debug("s3 source: snapshot loaded", zap.String("key", s.key), zap.Int("raffles", len(raffles)))
	return raffles, nil
}
