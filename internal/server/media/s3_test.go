package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	putIn    *s3.PutObjectInput
	putBody  []byte
	putErr   error
	deleted  []string
	delErr   error
	headErr  error
	created  []string
	createEr error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putIn = in
	if in.Body != nil {
		f.putBody, _ = io.ReadAll(in.Body)
	}
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	if f.delErr != nil {
		return nil, f.delErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, aws.ToString(in.Bucket))
	if f.createEr != nil {
		return nil, f.createEr
	}
	return &s3.CreateBucketOutput{}, nil
}

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func newTestStore(api objectAPI) *S3Store {
	s := newS3Store(api, S3Config{
		Bucket:       "media",
		BaseEndpoint: "http://127.0.0.1:9000/",
	})
	s.now = func() time.Time { return time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestUpload_PutsObjectAndBuildsURL(t *testing.T) {
	api := &fakeS3{}
	s := newTestStore(api)
	path := writeFile(t, "Avatar.PNG", pngHeader)

	asset, err := s.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^users/2025/3/7/[0-9a-f-]{36}\.png$`), asset.PublicID)
	assert.Equal(t, "http://127.0.0.1:9000/media/"+asset.PublicID, asset.URL)

	require.NotNil(t, api.putIn)
	assert.Equal(t, "media", aws.ToString(api.putIn.Bucket))
	assert.Equal(t, asset.PublicID, aws.ToString(api.putIn.Key))
	assert.Equal(t, "image/png", aws.ToString(api.putIn.ContentType))
	assert.Equal(t, int64(len(pngHeader)), aws.ToInt64(api.putIn.ContentLength))
	assert.Equal(t, pngHeader, api.putBody, "body must be rewound after sniffing")
}

func TestUpload_UniqueKeys(t *testing.T) {
	s := newTestStore(&fakeS3{})
	path := writeFile(t, "a.png", pngHeader)

	a, err := s.Upload(context.Background(), path)
	require.NoError(t, err)
	b, err := s.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.NotEqual(t, a.PublicID, b.PublicID)
}

func TestUpload_PublicBaseOverridesEndpoint(t *testing.T) {
	s := newS3Store(&fakeS3{}, S3Config{
		Bucket:        "media",
		BaseEndpoint:  "http://minio:9000",
		PublicBaseURL: "https://cdn.example.com/",
		Folder:        "avatars",
	})
	path := writeFile(t, "a.jpg", []byte("\xff\xd8\xff\xe0 jpeg"))

	asset, err := s.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Regexp(t, `^https://cdn\.example\.com/media/avatars/`, asset.URL)
}

func TestUpload_Errors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := newTestStore(&fakeS3{}).Upload(context.Background(), "")
		assert.ErrorIs(t, err, common.ErrEmptyUpload)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := newTestStore(&fakeS3{}).Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		api := &fakeS3{}
		_, err := newTestStore(api).Upload(context.Background(), writeFile(t, "e.png", nil))
		assert.ErrorIs(t, err, common.ErrEmptyUpload)
		assert.Nil(t, api.putIn, "nothing is uploaded")
	})

	t.Run("put fails", func(t *testing.T) {
		api := &fakeS3{putErr: errors.New("access denied")}
		_, err := newTestStore(api).Upload(context.Background(), writeFile(t, "a.png", pngHeader))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}

func TestDelete(t *testing.T) {
	api := &fakeS3{}
	s := newTestStore(api)

	require.NoError(t, s.Delete(context.Background(), "users/2025/3/7/x.png"))
	require.NoError(t, s.Delete(context.Background(), ""))
	assert.Equal(t, []string{"users/2025/3/7/x.png"}, api.deleted)

	api.delErr = errors.New("boom")
	assert.Error(t, s.Delete(context.Background(), "k"))
}

func TestEnsureBucket(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		api := &fakeS3{}
		require.NoError(t, newTestStore(api).EnsureBucket(context.Background()))
		assert.Empty(t, api.created)
	})

	t.Run("missing is created", func(t *testing.T) {
		api := &fakeS3{headErr: &types.NotFound{}}
		require.NoError(t, newTestStore(api).EnsureBucket(context.Background()))
		assert.Equal(t, []string{"media"}, api.created)
	})

	t.Run("other head error", func(t *testing.T) {
		api := &fakeS3{headErr: errors.New("forbidden")}
		require.Error(t, newTestStore(api).EnsureBucket(context.Background()))
		assert.Empty(t, api.created)
	})
}

func TestNewS3Store_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	s, err := NewS3Store(context.Background(), S3Config{
		Region:       "us-east-1",
		AccessKey:    "admin",
		SecretKey:    "secret",
		BaseEndpoint: "http://127.0.0.1:9000/",
		Bucket:       "media",
	})
	require.NoError(t, err)
	require.NotNil(t, s)

	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000", s.publicBase)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}

	_, err := NewS3Store(context.Background(), S3Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aws config")
}
