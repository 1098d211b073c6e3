// internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"time"
)

// Config
//
// 서비스 실행 시 필요한 모든 환경 변수 값을 보관하는 구조체.
// 모든 값은 프로세스 시작 시점에 Load() 에 의해 초기화되며,
// 이후에는 변경되지 않는 불변(read-only) 설정들이다.
type Config struct {

	// ---------------------------
	// AWS 기본 환경
	// ---------------------------

	AWSRegion string // AWS 리전 (예: ap-northeast-2)

	BlobBucket string // 로그 원문(blob)이 저장될 S3 버킷 이름
	BlobPrefix string // blob 키 prefix (예: logs)
	DocTable   string // 조회용 레코드가 저장될 DynamoDB 테이블 이름
	LogGroup   string // 브릿지가 읽는 CloudWatch Logs 로그 그룹 이름

	// ---------------------------
	// 서버 식별자 / 네트워크
	// ---------------------------

	ServiceName string // 로그 공통 필드 (기본: log-tracker)
	InstanceID  string // 프로세스 고유 ID (호스트명 기반, 실패 시 랜덤 hex)
	HTTPAddr    string // HTTP 서버 bind 주소 (기본 ":3000")

	// ---------------------------
	// 요청 처리 파라미터
	// ---------------------------

	MaxBodySize      int64         // 단일 HTTP 요청 body 최대 크기 (바이트)
	PresignTTL       time.Duration // 조회 응답에 포함되는 retrieval URL 유효기간
	StreamEventLimit int32         // 브릿지가 한 번에 가져오는 최근 이벤트 수

	// ---------------------------
	// 외부 저장소 호출 timeout
	// ---------------------------
	// Retry 정책 단일화
	// --------------------------------------------
	// AWS SDK v2 기본 retry 는 서비스 상황에 따라 3회까지 수행된다.
	// 이 시스템은 "실패는 재시도 없이 호출자에게 그대로 보고한다"는
	// 계약이므로 SDK Retry 를 코드에서 0으로 고정하고,
	// 각 호출마다 timeout 만 적용한다.
	// --------------------------------------------

	S3Timeout  time.Duration // S3 PutObject / presign 호출당 timeout
	DDBTimeout time.Duration // DynamoDB PutItem / Scan 호출당 timeout
	CWLTimeout time.Duration // CloudWatch Logs 호출당 timeout

	// ---------------------------
	// Blob 저장 형식
	// ---------------------------

	BlobGzip bool // true 면 blob 본문을 gzip + ContentEncoding 으로 저장

	// ---------------------------
	// GeoIP
	// ---------------------------

	GeoIPDB string // MaxMind mmdb 파일 경로. 비우면 sentinel 전용 모드.

	// ---------------------------
	// 로깅
	// ---------------------------

	LogLevel  string // zerolog 레벨 (기본 info)
	LogPretty bool   // true 면 콘솔 출력, false 면 JSON
}

// Load
//
// 환경 변수 기반으로 Config 값을 초기화한다.
// 저장소 식별 값(region, bucket, table, log group)은 필수이며
// 비어있으면 즉시 프로세스를 종료(fail-fast)한다.
// 나머지는 운영상 무난한 기본값을 갖는다.
func Load() Config {
	return Config{
		AWSRegion: must("AWS_REGION"),

		BlobBucket: must("BLOB_BUCKET"),
		BlobPrefix: optional("BLOB_PREFIX", "logs"),
		DocTable:   must("DOC_TABLE"),
		LogGroup:   must("LOG_GROUP"),

		ServiceName: optional("SERVICE_NAME", "log-tracker"),
		InstanceID:  fallbackInstanceID(),
		HTTPAddr:    optional("HTTP_ADDR", ":3000"),

		MaxBodySize:      optionalInt64("MAX_BODY_SIZE", 64*1024),
		PresignTTL:       optionalDur("PRESIGN_TTL", 300*time.Second),
		StreamEventLimit: int32(optionalInt("STREAM_EVENT_LIMIT", 50)),

		S3Timeout:  optionalDur("S3_TIMEOUT", 5*time.Second),
		DDBTimeout: optionalDur("DDB_TIMEOUT", 5*time.Second),
		CWLTimeout: optionalDur("CWL_TIMEOUT", 10*time.Second),

		BlobGzip: optionalBool("BLOB_GZIP", false),

		GeoIPDB: os.Getenv("GEOIP_DB"),

		LogLevel:  optional("LOG_LEVEL", "info"),
		LogPretty: optionalBool("LOG_PRETTY", false),
	}
}

// must / optional*
//
// 공통 패턴.
// 필수 환경변수가 없거나 형식이 잘못되면 즉시 로그 출력 후 종료(fail-fast).
// 런타임 중 설정 오류를 겪지 않도록 하기 위한 보호 전략.
func must(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("missing required env: %s", key)
	}
	return v
}

func optional(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func optionalInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int env %s=%q: %v", key, v, err)
	}
	return n
}

func optionalInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid int64 env %s=%q: %v", key, v, err)
	}
	return n
}

func optionalDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration env %s=%q: %v", key, v, err)
	}
	return d
}

func optionalBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("invalid bool env %s=%q: %v", key, v, err)
	}
	return b
}

// fallbackInstanceID
//
// 이 서버 인스턴스를 식별하는 고유 값.
//   - 기본: hostname (ECS/Fargate에서는 task-id 형태로 고유)
//   - fallback: 12자리 랜덤 hex
func fallbackInstanceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	// 랜덤 6바이트 → 12자리 hex
	var b [6]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
