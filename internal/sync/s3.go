package sync

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination writes JSONL snapshots to an S3-compatible bucket.
type S3Destination struct {
	client  *s3.Client
	bucket  string
	key     string
	dateKey bool
	now     func() time.Time
}

// S3Options configures an S3Destination.
type S3Options struct {
	Bucket   string
	Key      string // object key; with Dated, used as a prefix
	Region   string
	Endpoint string // non-empty enables path-style addressing (MinIO etc.)
	Dated    bool   // append "/YYYY-MM-DD.jsonl" so each day keeps its own copy
}

// NewS3Destination creates an S3 destination from the default AWS
// credential chain.
func NewS3Destination(ctx context.Context, opts S3Options) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if opts.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client:  s3.NewFromConfig(cfg, s3opts...),
		bucket:  opts.Bucket,
		key:     opts.Key,
		dateKey: opts.Dated,
		now:     time.Now,
	}, nil
}

func (d *S3Destination) Name() string { return "s3://" + d.bucket + "/" + d.key }

// objectKey returns the key for a snapshot taken now.
func (d *S3Destination) objectKey() string {
	if !d.dateKey {
		return d.key
	}
	return d.key + "/" + d.now().UTC().Format("2006-01-02") + ".jsonl"
}

// Write uploads data to S3.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.objectKey()),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}
