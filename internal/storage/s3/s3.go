// Package s3 stores the user directory and the precomputed course documents
// in an S3-compatible bucket. The directory is one JSON object; its ETag is
// the version tag, and writes are made conditional with If-Match /
// If-None-Match so concurrent writers cannot silently clobber each other.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
	"github.com/gradeboard-dev/gradeboard/internal/storage"
)

// Object keys, matching the layout the ingestion job and earlier
// deployments already use.
const (
	directoryKey    = "auth/users.json"
	coursePrefix    = "canvas_data/"
	courseDirFormat = "canvas_data/course_%s/latest.json"
)

const defaultTimeout = 10 * time.Second

// api is the subset of the S3 client the store uses. Narrowed to an
// interface so tests can substitute a fake.
type api interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type Store struct {
	client  api
	bucket  string
	timeout time.Duration
}

// Config carries the settings needed to reach the bucket. AccessKeyID and
// SecretAccessKey are optional; when empty the default AWS credential chain
// is used. BaseEndpoint points at S3-compatible stores such as MinIO.
type Config struct {
	Bucket          string
	Region          string
	BaseEndpoint    string
	AccessKeyID     string
	SecretAccessKey string
	RequestTimeout  time.Duration
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithClient(client, cfg.Bucket, cfg.RequestTimeout), nil
}

// NewWithClient wires an existing client, mainly for tests.
func NewWithClient(client api, bucket string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{client: client, bucket: bucket, timeout: timeout}
}

// Load fetches the whole directory document. A missing object is not an
// error: it yields an empty directory with the NoVersion sentinel so the
// document can be created lazily on first save.
func (s *Store) Load(ctx context.Context) (domain.Directory, storage.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(directoryKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return domain.Directory{}, storage.NoVersion, nil
		}
		return domain.Directory{}, storage.NoVersion, classifyTransient("loading directory", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return domain.Directory{}, storage.NoVersion, classifyTransient("reading directory body", err)
	}

	dir, err := decodeDirectory(body)
	if err != nil {
		return domain.Directory{}, storage.NoVersion, err
	}
	return dir, etagVersion(out.ETag), nil
}

// Save writes the whole directory back, conditional on the stored version.
// NoVersion asserts the object must not exist yet; anything else must match
// the current ETag. A failed condition surfaces as ErrConflict and writes
// nothing.
func (s *Store) Save(ctx context.Context, dir domain.Directory, expected storage.Version) (storage.Version, error) {
	body, err := json.MarshalIndent(dir, "", "  ")
	if err != nil {
		return storage.NoVersion, fmt.Errorf("encoding directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	in := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(directoryKey),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String("application/json"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}
	if expected == storage.NoVersion {
		in.IfNoneMatch = aws.String("*")
	} else {
		in.IfMatch = aws.String(string(expected))
	}

	out, err := s.client.PutObject(ctx, in)
	if err != nil {
		if isPreconditionFailure(err) {
			return storage.NoVersion, storage.ErrConflict
		}
		return storage.NoVersion, classifyTransient("saving directory", err)
	}
	return etagVersion(out.ETag), nil
}

// ListCourseIDs lists the courses with ingested data, from the common
// prefixes under canvas_data/.
func (s *Store) ListCourseIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var ids []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(coursePrefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, classifyTransient("listing courses", err)
		}
		for _, p := range out.CommonPrefixes {
			id := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(p.Prefix), coursePrefix), "/")
			id = strings.TrimPrefix(id, "course_")
			if id != "" {
				ids = append(ids, id)
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return ids, nil
}

// CourseDocument returns the latest precomputed document for a course
// verbatim; the aggregation layer owns its shape.
func (s *Store) CourseDocument(ctx context.Context, courseID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fmt.Sprintf(courseDirFormat, courseID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, storage.ErrNotFound
		}
		return nil, classifyTransient("loading course document", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, classifyTransient("reading course document", err)
	}
	return body, nil
}

// Ping checks bucket reachability for the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return classifyTransient("head bucket", err)
	}
	return nil
}

// decodeDirectory parses the stored document strictly: unknown fields,
// invalid roles or records missing their identity are rejected rather than
// coerced.
func decodeDirectory(body []byte) (domain.Directory, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var dir domain.Directory
	if err := dec.Decode(&dir); err != nil {
		return domain.Directory{}, fmt.Errorf("%w: %v", storage.ErrMalformedDocument, err)
	}
	for _, u := range dir.Users {
		if u.Email == "" {
			return domain.Directory{}, fmt.Errorf("%w: record without email", storage.ErrMalformedDocument)
		}
		if u.PasswordHash == "" {
			return domain.Directory{}, fmt.Errorf("%w: record %q without password hash", storage.ErrMalformedDocument, u.Email)
		}
	}
	return dir, nil
}

func etagVersion(etag *string) storage.Version {
	return storage.Version(strings.Trim(aws.ToString(etag), `"`))
}

// isPreconditionFailure recognizes a failed conditional write. S3 answers
// 412 when the ETag no longer matches and 409 when two conditional writes
// race on the same key.
func isPreconditionFailure(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

// classifyTransient wraps timeouts and transport or service failures as
// ErrTransient. From the caller's point of view everything except a failed
// write condition and a malformed document is retryable.
func classifyTransient(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, storage.ErrTransient, err)
}
