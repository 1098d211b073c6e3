// internal/bridge/cloudwatch.go
package bridge

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"logtracker/internal/config"
	"logtracker/internal/metrics"
	"logtracker/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExternalSourceError
// ------------------------------------------------------------
// 외부 로그 스트림 서비스 조회 실패. 재시도 없이 그대로 보고한다.
// 호출 단위로 독립적이므로 한 번의 실패가 다음 호출에 영향을 주지 않는다.
type ExternalSourceError struct {
	Op  string // "describe-streams" | "get-events"
	Err error
}

func (e *ExternalSourceError) Error() string {
	return fmt.Sprintf("external log stream %s failed: %v", e.Op, e.Err)
}

func (e *ExternalSourceError) Unwrap() error {
	return e.Err
}

// streamAPI 는 브릿지가 사용하는 CloudWatch Logs 호출의 부분집합이다.
// 테스트에서 fake 로 대체한다.
type streamAPI interface {
	DescribeLogStreams(ctx context.Context, params *cloudwatchlogs.DescribeLogStreamsInput,
		optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error)
	GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput,
		optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

// Bridge
// ------------------------------------------------------------
// 고정된 로그 그룹에서 가장 최근에 활동한 스트림 하나를 찾아
// 최근 이벤트를 끌어온 뒤 LogEntry 모양으로 정규화한다.
//
//   - 스트림이 없으면 빈 목록 (에러 아님)
//   - 레벨은 메시지 키워드로 추정 (외부 이벤트에는 레벨 필드가 없음)
//   - ip/location 은 sentinel, blobKey 없음 → 조회 URL 도 항상 없음
//   - 이 경로의 엔트리는 어디에도 저장되지 않는다 (요청마다 합성)
type Bridge struct {
	metrics *metrics.Metrics
	client  streamAPI
	group   string
	limit   int32
	timeout time.Duration
}

func New(cfg config.Config, m *metrics.Metrics, awsCfg aws.Config) *Bridge {
	client := cloudwatchlogs.NewFromConfig(awsCfg, func(o *cloudwatchlogs.Options) {
		o.RetryMaxAttempts = 0
	})

	return &Bridge{
		metrics: m,
		client:  client,
		group:   cfg.LogGroup,
		limit:   cfg.StreamEventLimit,
		timeout: cfg.CWLTimeout,
	}
}

// Recent 은 가장 최근 활성 스트림의 최근 이벤트를 최신순으로 반환한다.
//
// 반환 순서는 document store 조회 경로와 동일하게 timestamp 내림차순으로
// 통일한다 (두 경로가 같은 테이블 컴포넌트로 렌더링되므로 순서 계약도 하나).
func (b *Bridge) Recent(ctx context.Context) ([]model.LogEntry, error) {
	atomic.AddInt64(&b.metrics.BridgeCallsTotal, 1)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	// ------------------------------------------------------------
	// 1) 마지막 이벤트 시각 기준 최신 스트림 1개 조회
	// ------------------------------------------------------------
	streams, err := b.client.DescribeLogStreams(ctx, &cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupName: aws.String(b.group),
		OrderBy:      types.OrderByLastEventTime,
		Descending:   aws.Bool(true),
		Limit:        aws.Int32(1),
	})
	if err != nil {
		atomic.AddInt64(&b.metrics.BridgeErrorsTotal, 1)
		return nil, &ExternalSourceError{Op: "describe-streams", Err: err}
	}

	if len(streams.LogStreams) == 0 {
		// 비어 있는 로그 그룹은 정상 상태다
		return []model.LogEntry{}, nil
	}
	latest := streams.LogStreams[0]

	// ------------------------------------------------------------
	// 2) 해당 스트림 꼬리에서 최근 이벤트 bounded window 조회
	// ------------------------------------------------------------
	events, err := b.client.GetLogEvents(ctx, &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(b.group),
		LogStreamName: latest.LogStreamName,
		StartFromHead: aws.Bool(false),
		Limit:         aws.Int32(b.limit),
	})
	if err != nil {
		atomic.AddInt64(&b.metrics.BridgeErrorsTotal, 1)
		return nil, &ExternalSourceError{Op: "get-events", Err: err}
	}

	// ------------------------------------------------------------
	// 3) LogEntry 로 정규화 + 최신순 정렬
	// ------------------------------------------------------------
	entries := make([]model.LogEntry, 0, len(events.Events))
	for _, ev := range events.Events {
		entries = append(entries, normalize(ev))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Time().After(entries[j].Time())
	})

	log.Debug().Int("count", len(entries)).Str("stream", aws.ToString(latest.LogStreamName)).
		Msg("cloudwatch events bridged")
	return entries, nil
}

// normalize 는 외부 이벤트 1건을 도메인 엔티티로 변환한다.
// GetLogEvents 응답에는 이벤트 id 가 없으므로 매 변환마다 새 id 를 발급한다
// (이 경로의 엔트리는 저장되지 않으므로 id 의 수명은 응답 1건이다).
func normalize(ev types.OutputLogEvent) model.LogEntry {
	msg := aws.ToString(ev.Message)

	var ts string
	if ev.Timestamp != nil {
		ts = time.UnixMilli(*ev.Timestamp).UTC().Format(time.RFC3339Nano)
	}

	return model.LogEntry{
		ID:        uuid.NewString(),
		Message:   msg,
		Level:     string(model.InferLevel(msg)),
		IP:        model.ExternalSourceIP,
		Timestamp: ts,
		Location:  model.SentinelLocation(),
		// BlobKey 없음 → retrievalUrl 도 항상 없음
	}
}
