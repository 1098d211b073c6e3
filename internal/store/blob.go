// internal/store/blob.go
package store

import (
	"bytes"
	"context"
	"time"

	"logtracker/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object 는 blob 저장소에 기록되는 단일 객체이다.
// ContentEncoding 은 gzip 저장 모드일 때만 "gzip" 으로 채워진다.
type Object struct {
	Body            []byte
	ContentType     string
	ContentEncoding string
}

// BlobStore
// ------------------------------------------------------------
// 로그 원문을 키 단위 불변 객체로 보관하는 저장소.
//
//   - Put: 객체 기록. 같은 키로 다시 쓰면 덮어쓴다 (키가 엔트리 id 에서
//     결정적으로 유도되므로, 부분 실패 후 호출자 재시도가 안전해진다).
//   - Sign: 유효기간이 있는 조회 URL 발급. 발급 실패는 호출자가
//     레코드 단위로 격리한다.
type BlobStore interface {
	Put(ctx context.Context, key string, obj Object) error
	Sign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// S3Blob 은 BlobStore 의 S3 구현이다.
// 모든 호출은 컨텍스트 기반 per-call timeout 을 가지며,
// SDK retry 는 0으로 고정된다 (실패는 즉시 보고).
type S3Blob struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	timeout time.Duration
}

// NewS3Blob 는 S3 client / presign client 를 생성한다.
// awsCfg 는 main 에서 한 번 로드해 저장소 구현들이 공유한다.
func NewS3Blob(cfg config.Config, awsCfg aws.Config) *S3Blob {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.RetryMaxAttempts = 0
	})

	return &S3Blob{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.BlobBucket,
		timeout: cfg.S3Timeout,
	}
}

// Put 은 PutObject 1회 호출을 수행한다. retry 없음.
func (b *S3Blob) Put(ctx context.Context, key string, obj Object) error {
	ctx2, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	in := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
	}
	if obj.ContentType != "" {
		in.ContentType = aws.String(obj.ContentType)
	}
	if obj.ContentEncoding != "" {
		in.ContentEncoding = aws.String(obj.ContentEncoding)
	}

	_, err := b.client.PutObject(ctx2, in)
	return err
}

// Sign 은 GetObject presigned URL 을 발급한다.
// URL 유효기간(ttl)은 호출자(조회 엔진)가 결정한다.
func (b *S3Blob) Sign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	ctx2, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := b.presign.PresignGetObject(ctx2, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
