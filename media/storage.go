// Package media stores uploaded images, media and documents in an S3
// compatible bucket.
package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2"
)

// Storage keeps media files under keys and knows their public URLs.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	URL(key string) string
}

type R2Config struct {
	Endpoint  string
	Bucket    string
	PublicURL string
	AccessKey string
	SecretKey string
}

// R2 is a Cloudflare R2 bucket reached through the S3 API.
type R2 struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewR2(ctx context.Context, c R2Config) (*R2, error) {
	if c.AccessKey == "" || c.SecretKey == "" {
		return nil, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.Region = "auto"
		o.UsePathStyle = true
	})

	return &R2{client: client, bucket: c.Bucket, publicURL: strings.TrimRight(c.PublicURL, "/")}, nil
}

func (r *R2) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("uploading %s to bucket %s: %w", key, r.bucket, err)
	}
	return nil
}

func (r *R2) URL(key string) string {
	return r.publicURL + "/" + key
}

// Memory keeps files in process. Used in development and tests.
type Memory struct {
	BaseURL string

	mu    sync.RWMutex
	files map[string]memoryFile
}

type memoryFile struct {
	contentType string
	data        []byte
}

func (m *Memory) Put(_ context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string]memoryFile)
	}
	m.files[key] = memoryFile{contentType: contentType, data: append([]byte(nil), data...)}
	return nil
}

func (m *Memory) URL(key string) string {
	return strings.TrimRight(m.BaseURL, "/") + "/" + key
}

// Get returns a stored file.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[key]
	return f.data, ok
}

// Serve answers requests for stored files. The route must capture the key
// as its wildcard, e.g. /media/*.
func (m *Memory) Serve(c *fiber.Ctx) error {
	m.mu.RLock()
	f, ok := m.files[c.Params("*")]
	m.mu.RUnlock()
	if !ok {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderContentType, f.contentType)
	return c.Send(f.data)
}
