package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics 는 서버 상태를 나타내는 카운터 모음이다.
// Prometheus 용이 아니라 운영자가 장애 원인 분석할 때 보는 내부 카운터이며,
// /metrics 엔드포인트에서 plaintext 로 덤프된다.
type Metrics struct {
	// ======================
	// 수집(submission) 지표
	// ======================

	// SubmissionsTotal
	// - POST /log 로 들어온 모든 제출 시도 수 (성공/실패 무관).
	SubmissionsTotal int64

	// SubmissionsAcceptedTotal
	// - blob + document 이중 쓰기까지 모두 성공한 제출 수.
	// - SubmissionsTotal 과의 차이가 곧 "수집 실패 규모".
	SubmissionsAcceptedTotal int64

	// SubmissionsRejectedValidationTotal
	// - message 누락 등으로 저장 시도 전에 거절된(400) 제출 수.
	SubmissionsRejectedValidationTotal int64

	// ======================
	// 저장소 지표
	// ======================

	// BlobPutErrorsTotal
	// - S3 PutObject 실패 횟수. 이 실패는 document 쓰기를 막고
	//   제출 전체를 실패시킨다.
	BlobPutErrorsTotal int64

	// DocPutErrorsTotal
	// - DynamoDB PutItem 실패 횟수.
	// - blob 쓰기는 이미 성공한 뒤이므로, 이 값이 증가했다는 것은
	//   조회 불가능한 orphan blob 이 생겼다는 뜻이다 (감지용 지표).
	DocPutErrorsTotal int64

	// DocScanErrorsTotal
	// - DynamoDB Scan 실패 횟수. 조회 요청 전체 실패로 이어진다.
	DocScanErrorsTotal int64

	// ======================
	// 조회(hydration) 지표
	// ======================

	// QueriesTotal
	// - GET /logs 조회 요청 수.
	QueriesTotal int64

	// SignErrorsTotal
	// - presigned URL 발급 실패 횟수 (레코드 단위).
	// - 조회 자체는 실패하지 않고 해당 레코드의 retrievalUrl 만 비워진다.
	SignErrorsTotal int64

	// ======================
	// 브릿지 지표
	// ======================

	// BridgeCallsTotal
	// - GET /cloudwatch-logs 호출 수.
	BridgeCallsTotal int64

	// BridgeErrorsTotal
	// - CloudWatch Logs 조회 실패 횟수 (호출 단위, 502 응답).
	BridgeErrorsTotal int64
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) String() string {
	var sb strings.Builder
	sb.Grow(256)

	fmt.Fprintf(&sb, "submissions_total=%d\n", atomic.LoadInt64(&m.SubmissionsTotal))
	fmt.Fprintf(&sb, "submissions_accepted_total=%d\n", atomic.LoadInt64(&m.SubmissionsAcceptedTotal))
	fmt.Fprintf(&sb, "submissions_rejected_validation_total=%d\n", atomic.LoadInt64(&m.SubmissionsRejectedValidationTotal))

	fmt.Fprintf(&sb, "blob_put_errors_total=%d\n", atomic.LoadInt64(&m.BlobPutErrorsTotal))
	fmt.Fprintf(&sb, "doc_put_errors_total=%d\n", atomic.LoadInt64(&m.DocPutErrorsTotal))
	fmt.Fprintf(&sb, "doc_scan_errors_total=%d\n", atomic.LoadInt64(&m.DocScanErrorsTotal))

	fmt.Fprintf(&sb, "queries_total=%d\n", atomic.LoadInt64(&m.QueriesTotal))
	fmt.Fprintf(&sb, "sign_errors_total=%d\n", atomic.LoadInt64(&m.SignErrorsTotal))

	fmt.Fprintf(&sb, "bridge_calls_total=%d\n", atomic.LoadInt64(&m.BridgeCallsTotal))
	fmt.Fprintf(&sb, "bridge_errors_total=%d\n", atomic.LoadInt64(&m.BridgeErrorsTotal))

	return sb.String()
}
