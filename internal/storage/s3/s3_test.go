package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
	"github.com/gradeboard-dev/gradeboard/internal/storage"
)

type fakeAPI struct {
	getObject  func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error)
	putObject  func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	list       func(in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
	headBucket func(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error)
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return f.getObject(in)
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return f.putObject(in)
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return f.list(in)
}

func (f *fakeAPI) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return f.headBucket(in)
}

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

const validDoc = `{
  "users": [
    {
      "email": "ta@example.edu",
      "name": "Terry",
      "role": "member",
      "password_hash": "$2a$12$hash",
      "created_at": "2026-01-15T10:00:00Z"
    }
  ]
}`

func TestLoad_MissingObjectIsEmptyDirectory(t *testing.T) {
	fake := &fakeAPI{
		getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "auth/users.json", aws.ToString(in.Key))
			return nil, &types.NoSuchKey{}
		},
	}
	store := NewWithClient(fake, "bucket", 0)

	dir, version, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dir.Users)
	assert.Equal(t, storage.NoVersion, version)
}

func TestLoad_ParsesDocumentAndETag(t *testing.T) {
	fake := &fakeAPI{
		getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{
				Body: body(validDoc),
				ETag: aws.String(`"abc123"`),
			}, nil
		},
	}
	store := NewWithClient(fake, "bucket", 0)

	dir, version, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, storage.Version("abc123"), version)
	require.Len(t, dir.Users, 1)
	assert.Equal(t, "ta@example.edu", dir.Users[0].Email)
	assert.Equal(t, domain.RoleMember, dir.Users[0].Role)
}

func TestLoad_LegacyRoleNames(t *testing.T) {
	doc := `{"users": [{"email": "a@example.edu", "name": "A", "role": "ta", "password_hash": "h", "created_at": "2026-01-15T10:00:00Z"}]}`
	fake := &fakeAPI{
		getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{Body: body(doc), ETag: aws.String(`"v1"`)}, nil
		},
	}
	store := NewWithClient(fake, "bucket", 0)

	dir, _, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, dir.Users[0].Role)
}

func TestLoad_MalformedDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "<html>"},
		{"unknown field", `{"users": [], "extra": true}`},
		{"bad role", `{"users": [{"email": "a@b.c", "role": "root", "password_hash": "h"}]}`},
		{"missing email", `{"users": [{"name": "A", "role": "member", "password_hash": "h"}]}`},
		{"missing hash", `{"users": [{"email": "a@b.c", "role": "member"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{
				getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
					return &s3.GetObjectOutput{Body: body(tt.doc), ETag: aws.String(`"v1"`)}, nil
				},
			}
			store := NewWithClient(fake, "bucket", 0)

			_, _, err := store.Load(context.Background())
			assert.ErrorIs(t, err, storage.ErrMalformedDocument)
		})
	}
}

func TestSave_FirstWriteAssertsNoObject(t *testing.T) {
	var captured *s3.PutObjectInput
	fake := &fakeAPI{
		putObject: func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			captured = in
			return &s3.PutObjectOutput{ETag: aws.String(`"v1"`)}, nil
		},
	}
	store := NewWithClient(fake, "bucket", 0)

	version, err := store.Save(context.Background(), domain.Directory{}, storage.NoVersion)
	require.NoError(t, err)
	assert.Equal(t, storage.Version("v1"), version)

	require.NotNil(t, captured)
	assert.Equal(t, "*", aws.ToString(captured.IfNoneMatch))
	assert.Nil(t, captured.IfMatch)
	assert.Equal(t, types.ServerSideEncryptionAes256, captured.ServerSideEncryption)
}

func TestSave_UpdateMatchesVersion(t *testing.T) {
	var captured *s3.PutObjectInput
	fake := &fakeAPI{
		putObject: func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			captured = in
			return &s3.PutObjectOutput{ETag: aws.String(`"v2"`)}, nil
		},
	}
	store := NewWithClient(fake, "bucket", 0)

	version, err := store.Save(context.Background(), domain.Directory{}, storage.Version("v1"))
	require.NoError(t, err)
	assert.Equal(t, storage.Version("v2"), version)

	require.NotNil(t, captured)
	assert.Equal(t, "v1", aws.ToString(captured.IfMatch))
	assert.Nil(t, captured.IfNoneMatch)
}

func TestSave_ConditionFailures(t *testing.T) {
	for _, code := range []string{"PreconditionFailed", "ConditionalRequestConflict"} {
		t.Run(code, func(t *testing.T) {
			fake := &fakeAPI{
				putObject: func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
					return nil, &smithy.GenericAPIError{Code: code, Message: "condition failed"}
				},
			}
			store := NewWithClient(fake, "bucket", 0)

			_, err := store.Save(context.Background(), domain.Directory{}, storage.Version("stale"))
			assert.ErrorIs(t, err, storage.ErrConflict)
		})
	}
}

func TestSave_OtherFailuresAreTransient(t *testing.T) {
	fake := &fakeAPI{
		putObject: func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			return nil, errors.New("connection reset")
		},
	}
	store := NewWithClient(fake, "bucket", 0)

	_, err := store.Save(context.Background(), domain.Directory{}, storage.Version("v1"))
	assert.ErrorIs(t, err, storage.ErrTransient)
}

func TestListCourseIDs(t *testing.T) {
	fake := &fakeAPI{
		list: func(in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "canvas_data/", aws.ToString(in.Prefix))
			assert.Equal(t, "/", aws.ToString(in.Delimiter))
			return &s3.ListObjectsV2Output{
				CommonPrefixes: []types.CommonPrefix{
					{Prefix: aws.String("canvas_data/course_101/")},
					{Prefix: aws.String("canvas_data/course_cs50/")},
				},
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}
	store := NewWithClient(fake, "bucket", 0)

	ids, err := store.ListCourseIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "cs50"}, ids)
}

func TestCourseDocument_NotFound(t *testing.T) {
	fake := &fakeAPI{
		getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "canvas_data/course_101/latest.json", aws.ToString(in.Key))
			return nil, &types.NoSuchKey{}
		},
	}
	store := NewWithClient(fake, "bucket", 0)

	_, err := store.CourseDocument(context.Background(), "101")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPing(t *testing.T) {
	fake := &fakeAPI{
		headBucket: func(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
			return &s3.HeadBucketOutput{}, nil
		},
	}
	store := NewWithClient(fake, "bucket", 0)
	assert.NoError(t, store.Ping(context.Background()))

	fake.headBucket = func(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
		return nil, errors.New("no route to host")
	}
	assert.ErrorIs(t, store.Ping(context.Background()), storage.ErrTransient)
}
