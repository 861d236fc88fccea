package projectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dd0wney/cluso-stockflow/pkg/project"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps one object per project under a key prefix.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	enc    project.Encoding
	in     instrument
}

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// given; otherwise the default AWS credential chain applies. A custom
// endpoint switches to path-style addressing for S3 compatible servers.
func NewS3Store(ctx context.Context, cfg S3Config, opts Options) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("projectstore: s3 backend needs a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, cfg.Bucket, cfg.Prefix, opts), nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client S3API, bucket, prefix string, opts Options) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		enc:    opts.Encoding,
		in:     newInstrument(BackendS3, opts),
	}
}

func (s *S3Store) key(name string) string {
	return s.prefix + name + Extension
}

func contentType(enc project.Encoding) string {
	if enc == project.Compressed {
		return "application/x-snappy-framed"
	}
	return "application/json"
}

// Put uploads the document.
func (s *S3Store) Put(ctx context.Context, name string, doc *project.Document) (err error) {
	start := time.Now()
	var size int
	defer func() { err = s.in.observe("put", name, start, size, err) }()

	if err := ValidateName(name); err != nil {
		return err
	}
	data, err := project.Encode(doc, s.enc)
	if err != nil {
		return err
	}
	size = len(data)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(s.enc)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload project %s: %w", name, err)
	}
	return nil
}

// Get downloads and decodes a project.
func (s *S3Store) Get(ctx context.Context, name string) (doc *project.Document, err error) {
	start := time.Now()
	var size int
	defer func() { err = s.in.observe("get", name, start, size, err) }()

	if err := ValidateName(name); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to download project %s: %w", name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read project %s: %w", name, err)
	}
	size = len(data)
	return decode(name, data)
}

// List pages through the objects under the prefix.
func (s *S3Store) List(ctx context.Context) (infos []Info, err error) {
	start := time.Now()
	defer func() { err = s.in.observe("list", "", start, 0, err) }()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		for _, obj := range page.Contents {
			rest := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			name, ok := strings.CutSuffix(rest, Extension)
			if !ok || ValidateName(name) != nil {
				continue
			}
			infos = append(infos, Info{
				Name:     name,
				Size:     aws.ToInt64(obj.Size),
				Modified: aws.ToTime(obj.LastModified),
			})
		}
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

// Delete removes a project. S3 deletes are idempotent, so the object is
// checked first to report ErrNotFound.
func (s *S3Store) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { err = s.in.observe("delete", name, start, 0, err) }()

	if err := ValidateName(name); err != nil {
		return err
	}
	key := aws.String(s.key(name))
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: key}); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to stat project %s: %w", name, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: key}); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", name, err)
	}
	return nil
}

// Close is a no-op; the S3 client holds no resources.
func (s *S3Store) Close() error {
	return nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
