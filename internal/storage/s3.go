package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sir_venger/missionfiles/internal/config"
)

// S3API: подмножество клиента S3, нужное для чтения объектов.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 читает объекты бакета под общим префиксом.
type S3 struct {
	client S3API
	bucket string
	prefix string
}

// NewS3 создаёт хранилище поверх готового клиента.
func NewS3(client S3API, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// NewS3FromConfig загружает стандартную AWS-конфигурацию (env, профили, IMDS) и создаёт клиента.
func NewS3FromConfig(ctx context.Context, cfg config.StorageConfig) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRetryMode(aws.RetryModeAdaptive)}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.DisableLogOutputChecksumValidationSkipped = true
	})

	return NewS3(client, cfg.Bucket, cfg.Prefix), nil
}

// Open узнаёт размер объекта через HeadObject; сами байты читаются лениво.
func (s *S3) Open(ctx context.Context, name string) (File, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	key := objectKey(s.prefix, cleaned)
	if strings.HasSuffix(key, "/") {
		return nil, notFound(name)
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("s3: head %q: %w", key, err)
	}

	return &s3File{
		ctx:    ctx,
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

func isS3NotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}

	// HeadObject без тела отдаёт 404 как обобщённую APIError.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}

// s3File читает объект GET-запросом с Range от текущей позиции; Seek сбрасывает открытое тело.
type s3File struct {
	ctx    context.Context
	client S3API
	bucket string
	key    string
	size   int64

	offset int64
	body   io.ReadCloser
	closed bool
}

func (f *s3File) Name() string { return f.key }

func (f *s3File) Size() int64 { return f.size }

func (f *s3File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, fmt.Errorf("s3: read %q: file already closed", f.key)
	}
	if f.offset >= f.size {
		return 0, io.EOF
	}

	if f.body == nil {
		out, err := f.client.GetObject(f.ctx, &s3.GetObjectInput{
			Bucket: aws.String(f.bucket),
			Key:    aws.String(f.key),
			Range:  aws.String(fmt.Sprintf("bytes=%d-", f.offset)),
		})
		if err != nil {
			return 0, fmt.Errorf("s3: get %q at %d: %w", f.key, f.offset, err)
		}
		f.body = out.Body
	}

	n, err := f.body.Read(p)
	f.offset += int64(n)
	if err == io.EOF && f.offset < f.size {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

func (f *s3File) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.offset + offset
	case io.SeekEnd:
		abs = f.size + offset
	default:
		return 0, fmt.Errorf("s3: seek %q: invalid whence %d", f.key, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("s3: seek %q: negative position %d", f.key, abs)
	}

	if abs != f.offset {
		f.dropBody()
		f.offset = abs
	}
	return abs, nil
}

func (f *s3File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.dropBody()
}

func (f *s3File) dropBody() error {
	if f.body == nil {
		return nil
	}
	err := f.body.Close()
	f.body = nil
	return err
}

var _ Storage = (*S3)(nil)
