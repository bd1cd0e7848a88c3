package s3stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/indigo-web/wireparse/config"
	"github.com/indigo-web/wireparse/http/mime/multipart"
	"github.com/indigo-web/wireparse/http/parse"
	"github.com/indigo-web/wireparse/kv"
	"github.com/indigo-web/wireparse/transport/dummy"
	"github.com/stretchr/testify/require"
)

type object struct {
	data        []byte
	contentType string
}

// bucketMock keeps objects in memory, counting uploads attempted.
type bucketMock struct {
	objects map[string]object
	puts    int
	fail    error
}

func newBucketMock() *bucketMock {
	return &bucketMock{objects: make(map[string]object)}
}

func (b *bucketMock) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b.puts++
	if b.fail != nil {
		return nil, b.fail
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	b.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = object{
		data:        data,
		contentType: aws.ToString(in.ContentType),
	}

	return new(s3.PutObjectOutput), nil
}

func (b *bucketMock) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, found := b.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !found {
		return nil, errors.New("NoSuchKey")
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data))}, nil
}

func (b *bucketMock) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(b.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return new(s3.DeleteObjectOutput), nil
}

func newConfig(t *testing.T) config.Multipart {
	cfg := config.Default().Multipart
	cfg.Dir = t.TempDir()
	cfg.S3.Bucket = "uploads"
	cfg.S3.Prefix = "incoming"
	return cfg
}

func requireNoSpools(t *testing.T, dir string) {
	spools, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, spools)
}

func TestProvider(t *testing.T) {
	t.Run("no bucket", func(t *testing.T) {
		_, err := New(context.Background(), newBucketMock(), config.Default().Multipart, nil)
		require.ErrorIs(t, err, ErrNoBucket)
	})

	t.Run("upload on commit", func(t *testing.T) {
		bucket := newBucketMock()
		cfg := newConfig(t)
		provider, err := New(context.Background(), bucket, cfg, nil)
		require.NoError(t, err)

		stream, err := provider.Stream(kv.New().Add("Content-Type", "image/png"))
		require.NoError(t, err)
		_, err = stream.Write([]byte("picture"))
		require.NoError(t, err)
		require.Empty(t, bucket.objects)

		require.NoError(t, stream.Release())
		require.Zero(t, bucket.puts)
		_, err = stream.Open()
		require.Error(t, err)

		s := stream.(*Stream)
		require.NoError(t, s.Commit())
		require.NoError(t, s.Commit())
		require.Equal(t, 1, bucket.puts)
		require.True(t, strings.HasPrefix(s.Key(), "incoming/"))
		require.Equal(t, object{[]byte("picture"), "image/png"}, bucket.objects["uploads/"+s.Key()])
		requireNoSpools(t, cfg.Dir)

		r, err := stream.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, "picture", string(data))

		require.NoError(t, s.Remove())
		require.Empty(t, bucket.objects)
	})

	t.Run("upload failure", func(t *testing.T) {
		bucket := newBucketMock()
		bucket.fail = errors.New("access denied")
		provider, err := New(context.Background(), bucket, newConfig(t), nil)
		require.NoError(t, err)

		stream, err := provider.Stream(kv.New())
		require.NoError(t, err)
		require.NoError(t, stream.Release())
		require.Error(t, stream.Release())

		s := stream.(*Stream)
		require.ErrorContains(t, s.Commit(), "access denied")
		require.Error(t, s.Commit())
		_, err = stream.Open()
		require.Error(t, err)
	})

	t.Run("commit before release", func(t *testing.T) {
		bucket := newBucketMock()
		provider, err := New(context.Background(), bucket, newConfig(t), nil)
		require.NoError(t, err)

		stream, err := provider.Stream(kv.New())
		require.NoError(t, err)
		require.Error(t, stream.(*Stream).Commit())
		require.Zero(t, bucket.puts)
	})

	t.Run("abort", func(t *testing.T) {
		bucket := newBucketMock()
		cfg := newConfig(t)
		provider, err := New(context.Background(), bucket, cfg, nil)
		require.NoError(t, err)

		stream, err := provider.Stream(kv.New())
		require.NoError(t, err)
		_, err = stream.Write([]byte("half of it"))
		require.NoError(t, err)

		s := stream.(*Stream)
		require.NoError(t, s.Abort())
		require.NoError(t, s.Abort())
		requireNoSpools(t, cfg.Dir)
		require.Error(t, s.Commit())
		_, err = s.Write([]byte("more"))
		require.Error(t, err)
		require.Zero(t, bucket.puts)
		require.Empty(t, bucket.objects)
	})
}

func TestWithReader(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("a", "first"))
	require.NoError(t, w.WriteField("b", "second"))
	require.NoError(t, w.Close())

	setup := func(t *testing.T) (*config.Config, *bucketMock, *Provider) {
		bucket := newBucketMock()
		cfg := config.Default()
		cfg.Multipart = newConfig(t)
		provider, err := New(context.Background(), bucket, cfg.Multipart, nil)
		require.NoError(t, err)
		return cfg, bucket, provider
	}

	t.Run("parse doesn't upload", func(t *testing.T) {
		cfg, bucket, provider := setup(t)
		r, err := multipart.NewReader(cfg, w.Boundary(), provider, nil)
		require.NoError(t, err)

		offset := 0
		require.Equal(t, parse.Completed, r.Parse(body.Bytes(), &offset))
		require.Zero(t, bucket.puts)
		require.Empty(t, bucket.objects)

		for _, want := range []string{"first", "second"} {
			part, ok := r.Next()
			require.True(t, ok)
			data, err := part.ReadAll()
			require.NoError(t, err)
			require.Equal(t, want, string(data))
		}

		require.Len(t, bucket.objects, 2)
		requireNoSpools(t, cfg.Multipart.Dir)
	})

	t.Run("feed uploads parts before yielding them", func(t *testing.T) {
		cfg, bucket, provider := setup(t)
		r, err := multipart.NewReader(cfg, w.Boundary(), provider, nil)
		require.NoError(t, err)

		var uploaded []int
		for part, err := range r.Feed(context.Background(), dummy.Split(body.Bytes(), 7)) {
			require.NoError(t, err)
			uploaded = append(uploaded, len(bucket.objects))
			key := "uploads/" + part.Stream().(*Stream).Key()
			require.Contains(t, bucket.objects, key)
		}

		require.Equal(t, []int{1, 2}, uploaded)
		require.NoError(t, r.Close())
		require.Len(t, bucket.objects, 2)
	})

	t.Run("upload failure invalidates the message", func(t *testing.T) {
		cfg, bucket, provider := setup(t)
		bucket.fail = errors.New("throttled")
		r, err := multipart.NewReader(cfg, w.Boundary(), provider, nil)
		require.NoError(t, err)

		var errs []error
		for _, err := range r.Feed(context.Background(), dummy.NewMockClient(body.Bytes())) {
			errs = append(errs, err)
		}

		require.Len(t, errs, 1)
		require.ErrorIs(t, errs[0], multipart.ErrStreamProvider)
		require.ErrorContains(t, errs[0], "throttled")
		require.Equal(t, 1, bucket.puts)
		require.Empty(t, bucket.objects)
		requireNoSpools(t, cfg.Multipart.Dir)
	})

	t.Run("abandoned part is not uploaded", func(t *testing.T) {
		cfg, bucket, provider := setup(t)
		cfg.Multipart.MaxMessageSize = 32
		r, err := multipart.NewReader(cfg, "XYZ", provider, nil)
		require.NoError(t, err)

		offset := 0
		require.Equal(t, parse.NeedMoreData, r.Parse([]byte("--XYZ\r\n\r\npartial"), &offset))
		offset = 0
		require.Equal(t, parse.SizeExceeded, r.Parse([]byte(strings.Repeat("x", 64)), &offset))
		require.NoError(t, r.Close())

		require.Zero(t, bucket.puts)
		require.Empty(t, bucket.objects)
		requireNoSpools(t, cfg.Multipart.Dir)
	})

	t.Run("closed in progress", func(t *testing.T) {
		cfg, bucket, provider := setup(t)
		r, err := multipart.NewReader(cfg, "XYZ", provider, nil)
		require.NoError(t, err)

		offset := 0
		require.Equal(t, parse.NeedMoreData, r.Parse([]byte("--XYZ\r\n\r\ncomplete\r\n--XYZ\r\n\r\npartial"), &offset))
		require.NoError(t, r.Close())

		_, ok := r.Next()
		require.False(t, ok)
		require.Zero(t, bucket.puts)
		require.Empty(t, bucket.objects)
		requireNoSpools(t, cfg.Multipart.Dir)
	})
}
