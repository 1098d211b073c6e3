// internal/model/entry.go
package model

import (
	"strings"
	"time"
)

// Location
// ------------------------------------------------------------
// IP 기반 지역 조회 결과. 조회 실패(사설망/루프백/미등록 IP)의 경우
// SentinelLocation 을 그대로 사용하며, 실패를 에러로 다루지 않는다.
type Location struct {
	Country  string `json:"country" dynamodbav:"country"`
	Region   string `json:"region" dynamodbav:"region"`
	City     string `json:"city" dynamodbav:"city"`
	Timezone string `json:"timezone" dynamodbav:"timezone"`
}

// SentinelLocation 은 지역 조회가 불가능할 때 사용하는 고정 값이다.
// 대시보드가 "N/A" 문자열을 그대로 표시하므로 값 변경 금지.
func SentinelLocation() Location {
	return Location{
		Country:  "N/A",
		Region:   "N/A",
		City:     "Local or Private IP",
		Timezone: "UTC",
	}
}

// Level
// ------------------------------------------------------------
// 로그 레벨. 수집 시점에는 검증하지 않고 호출자가 보낸 문자열을
// 그대로 저장한다(자유 문자열). 레벨 별 분기 로직은 반드시
// Normalize() 를 거쳐야 하며, 인식 불가 값은 LevelUnknown 으로
// 수렴시켜 case 누락 없이 처리한다.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelUnknown Level = "unknown"
)

// Normalize 는 저장된 레벨 문자열을 닫힌 enum 으로 사상한다.
// 대소문자 무시. 인식 불가 값 → LevelUnknown.
func (l Level) Normalize() Level {
	switch strings.ToLower(strings.TrimSpace(string(l))) {
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelUnknown
	}
}

// InferLevel
// ------------------------------------------------------------
// CloudWatch 경유 이벤트에는 레벨 필드가 없으므로
// 메시지 본문 키워드로 레벨을 추정한다.
//   - "error" 또는 "fail" 포함 → error
//   - "warn" 포함              → warn
//   - 그 외                     → info
func InferLevel(message string) Level {
	m := strings.ToLower(message)
	if strings.Contains(m, "error") || strings.Contains(m, "fail") {
		return LevelError
	}
	if strings.Contains(m, "warn") {
		return LevelWarn
	}
	return LevelInfo
}

// ExternalSourceIP 는 CloudWatch 경유 엔트리의 ip 필드 sentinel 값.
const ExternalSourceIP = "cloudwatch"

// LogEntry
// ------------------------------------------------------------
// 시스템 전체의 단일 도메인 엔티티.
// 수집 경로(직접 제출)와 브릿지 경로(CloudWatch) 모두 이 형태로 수렴한다.
//
//   - ID / Timestamp 는 생성 시 1회 할당 후 불변.
//   - BlobKey 는 직접 제출 경로에서만 채워진다 (logs/<id>.json).
//   - RetrievalURL 은 조회 시점마다 새로 발급되는 파생 상태이며,
//     어떤 저장소에도 기록하지 않는다 (dynamodbav:"-").
type LogEntry struct {
	ID        string   `json:"id" dynamodbav:"id"`
	Message   string   `json:"message" dynamodbav:"message"`
	Level     string   `json:"level" dynamodbav:"level"`
	IP        string   `json:"ip" dynamodbav:"ip"`
	UserAgent string   `json:"userAgent,omitempty" dynamodbav:"userAgent,omitempty"`
	Timestamp string   `json:"timestamp" dynamodbav:"timestamp"`
	Location  Location `json:"location" dynamodbav:"location"`
	BlobKey   string   `json:"blobKey,omitempty" dynamodbav:"blobKey,omitempty"`

	// 조회 응답 전용. 유효기간이 있는 presigned URL.
	RetrievalURL string `json:"retrievalUrl,omitempty" dynamodbav:"-"`
}

// Time 은 ISO-8601 timestamp 를 파싱한다.
// 파싱 불가/빈 값은 epoch (time.Time zero 가 아닌 Unix epoch) 로 취급해
// 정렬 시 가장 오래된 것으로 밀려나게 한다.
func (e *LogEntry) Time() time.Time {
	if t, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil {
		return t
	}
	return time.Unix(0, 0).UTC()
}
