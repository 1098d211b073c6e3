package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"logtracker/internal/metrics"
	"logtracker/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

type fakeStreamAPI struct {
	streams     []types.LogStream
	events      []types.OutputLogEvent
	describeErr error
	getErr      error

	gotStreamName string
}

func (f *fakeStreamAPI) DescribeLogStreams(_ context.Context, in *cloudwatchlogs.DescribeLogStreamsInput,
	_ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &cloudwatchlogs.DescribeLogStreamsOutput{LogStreams: f.streams}, nil
}

func (f *fakeStreamAPI) GetLogEvents(_ context.Context, in *cloudwatchlogs.GetLogEventsInput,
	_ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.gotStreamName = aws.ToString(in.LogStreamName)
	return &cloudwatchlogs.GetLogEventsOutput{Events: f.events}, nil
}

func newTestBridge(api *fakeStreamAPI) *Bridge {
	return &Bridge{
		metrics: metrics.New(),
		client:  api,
		group:   "/aws/lambda/test-group",
		limit:   50,
		timeout: time.Second,
	}
}

func event(ts int64, msg string) types.OutputLogEvent {
	return types.OutputLogEvent{Timestamp: aws.Int64(ts), Message: aws.String(msg)}
}

func TestRecentEmptyGroup(t *testing.T) {
	b := newTestBridge(&fakeStreamAPI{})

	got, err := b.Recent(context.Background())
	if err != nil {
		t.Fatalf("empty group must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("entries = %d, want 0", len(got))
	}
}

func TestRecentNormalizes(t *testing.T) {
	api := &fakeStreamAPI{
		streams: []types.LogStream{{LogStreamName: aws.String("stream-a")}},
		events: []types.OutputLogEvent{
			event(1_717_236_000_000, "START RequestId: 1"),
			event(1_717_236_001_000, "Task failed: connection refused"),
			event(1_717_236_002_000, "WARN throttled"),
		},
	}
	b := newTestBridge(api)

	got, err := b.Recent(context.Background())
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if api.gotStreamName != "stream-a" {
		t.Errorf("queried stream %q", api.gotStreamName)
	}
	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}

	// 순서: timestamp 내림차순 (조회 엔진 경로와 동일 계약)
	if got[0].Message != "WARN throttled" || got[2].Message != "START RequestId: 1" {
		t.Errorf("order wrong: %q .. %q", got[0].Message, got[2].Message)
	}

	// 레벨 추정
	byMsg := map[string]string{}
	for _, en := range got {
		byMsg[en.Message] = en.Level
	}
	if byMsg["Task failed: connection refused"] != "error" {
		t.Errorf("fail message level = %q", byMsg["Task failed: connection refused"])
	}
	if byMsg["WARN throttled"] != "warn" {
		t.Errorf("warn message level = %q", byMsg["WARN throttled"])
	}
	if byMsg["START RequestId: 1"] != "info" {
		t.Errorf("plain message level = %q", byMsg["START RequestId: 1"])
	}

	// sentinel 필드 + blobKey/url 부재
	for _, en := range got {
		if en.IP != model.ExternalSourceIP {
			t.Errorf("ip = %q", en.IP)
		}
		if en.Location != model.SentinelLocation() {
			t.Errorf("location = %+v", en.Location)
		}
		if en.BlobKey != "" || en.RetrievalURL != "" {
			t.Errorf("bridged entry carries blob state: %+v", en)
		}
		if en.ID == "" {
			t.Error("bridged entry missing id")
		}
	}
}

func TestRecentErrorsTyped(t *testing.T) {
	b := newTestBridge(&fakeStreamAPI{describeErr: errors.New("cwl down")})
	_, err := b.Recent(context.Background())

	var serr *ExternalSourceError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want ExternalSourceError", err)
	}
	if serr.Op != "describe-streams" {
		t.Errorf("Op = %q", serr.Op)
	}

	b2 := newTestBridge(&fakeStreamAPI{
		streams: []types.LogStream{{LogStreamName: aws.String("s")}},
		getErr:  errors.New("cwl down"),
	})
	_, err = b2.Recent(context.Background())
	if !errors.As(err, &serr) || serr.Op != "get-events" {
		t.Fatalf("err = %v, want get-events ExternalSourceError", err)
	}
}
