// Package s3stream stores multipart body parts as S3 objects.
//
// Every part is spooled into a local temporary file while it's being parsed. Releasing the
// stream does no network I/O, so the parser never blocks on it. The spool is uploaded with
// a single PutObject on Commit, which multipart.Reader.Feed and Part.Open call. Abandoned
// parts are never uploaded: Abort just removes the spool.
package s3stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dchest/uniuri"
	"github.com/indigo-web/wireparse/config"
	"github.com/indigo-web/wireparse/http/mime/multipart"
	"github.com/indigo-web/wireparse/kv"
	"go.uber.org/zap"
)

// API is the subset of the S3 client the provider relies on.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var ErrNoBucket = errors.New("s3stream: bucket is not set")

// NewClient creates an S3 client using the default credential chain (env vars, shared
// config, IAM role).
func NewClient(ctx context.Context, cfg config.S3) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}

	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsConfig, s3Opts...), nil
}

// Provider implements multipart.Provider. The context is used for every request made by
// the streams it creates, so it should live as long as the parsed message does.
type Provider struct {
	ctx    context.Context
	client API
	bucket string
	prefix string
	dir    string
	log    *zap.Logger
}

// New returns a provider uploading into the configured bucket. Nil log disables logging.
func New(ctx context.Context, client API, cfg config.Multipart, log *zap.Logger) (*Provider, error) {
	if cfg.S3.Bucket == "" {
		return nil, ErrNoBucket
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Provider{
		ctx:    ctx,
		client: client,
		bucket: cfg.S3.Bucket,
		prefix: cfg.S3.Prefix,
		dir:    cfg.Dir,
		log:    log,
	}, nil
}

func (p *Provider) Stream(headers *kv.Storage) (multipart.Stream, error) {
	spool, err := os.CreateTemp(p.dir, "s3part-*")
	if err != nil {
		return nil, err
	}

	return &Stream{
		p:           p,
		spool:       spool,
		key:         path.Join(p.prefix, uniuri.New()),
		contentType: headers.Value("Content-Type"),
	}, nil
}

// Stream is a body part stored as an S3 object.
type Stream struct {
	p           *Provider
	spool       *os.File
	key         string
	contentType string
	size        int64
	released    bool
	uploaded    bool
}

func (s *Stream) Write(b []byte) (int, error) {
	if s.released || s.spool == nil {
		return 0, errors.New("s3stream: stream is already released")
	}

	n, err := s.spool.Write(b)
	s.size += int64(n)

	return n, err
}

// Release marks the spooled content as complete.
func (s *Stream) Release() error {
	if s.released {
		return errors.New("s3stream: stream is already released")
	}

	s.released = true
	return nil
}

// Commit uploads the spooled content. The spool is removed regardless of the outcome.
func (s *Stream) Commit() (err error) {
	switch {
	case s.uploaded:
		return nil
	case !s.released:
		return errors.New("s3stream: stream is not released")
	case s.spool == nil:
		return errors.New("s3stream: spool is gone")
	}

	spool := s.spool
	s.spool = nil
	defer func() {
		err = errors.Join(err, spool.Close(), os.Remove(spool.Name()))
	}()

	if _, err = spool.Seek(0, io.SeekStart); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.p.bucket),
		Key:           aws.String(s.key),
		Body:          spool,
		ContentLength: aws.Int64(s.size),
	}
	if s.contentType != "" {
		input.ContentType = aws.String(s.contentType)
	}

	if _, err = s.p.client.PutObject(s.p.ctx, input); err != nil {
		return fmt.Errorf("s3stream: upload %s: %w", s.key, err)
	}

	s.uploaded = true
	s.p.log.Debug("body part uploaded",
		zap.String("bucket", s.p.bucket),
		zap.String("key", s.key),
		zap.Int64("size", s.size),
	)

	return nil
}

// Abort removes the spool without uploading it.
func (s *Stream) Abort() error {
	s.released = true
	if s.spool == nil {
		return nil
	}

	spool := s.spool
	s.spool = nil

	return errors.Join(spool.Close(), os.Remove(spool.Name()))
}

// Open downloads the object.
func (s *Stream) Open() (io.ReadCloser, error) {
	if !s.uploaded {
		return nil, errors.New("s3stream: object is not uploaded")
	}

	out, err := s.p.client.GetObject(s.p.ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.p.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, err
	}

	return out.Body, nil
}

// Remove deletes the object. If it isn't uploaded, the spool is removed instead.
func (s *Stream) Remove() error {
	if !s.uploaded {
		return s.Abort()
	}

	_, err := s.p.client.DeleteObject(s.p.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.p.bucket),
		Key:    aws.String(s.key),
	})

	return err
}

func (s *Stream) Key() string {
	return s.key
}

func (s *Stream) Bucket() string {
	return s.p.bucket
}
