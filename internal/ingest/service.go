// internal/ingest/service.go
package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"logtracker/internal/config"
	"logtracker/internal/metrics"
	"logtracker/internal/model"
	"logtracker/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Locator 는 IP → 지역 조회 의존성이다. geo.Resolver 가 구현한다.
type Locator interface {
	Lookup(ip string) model.Location
}

// Submission 은 호출자(HTTP 계층)가 전달하는 원시 제출 값이다.
type Submission struct {
	Message   string
	Level     string // 빈 값이면 info. 그 외에는 검증 없이 그대로 저장됨.
	IP        string
	UserAgent string
}

// Service
// ------------------------------------------------------------
// Enricher + 이중 쓰기 코디네이터.
//
// 흐름: 검증 → 엔트리 생성(enrich) → blob 쓰기 → document 쓰기.
//
// 두 쓰기는 트랜잭션으로 묶이지 않는다:
//   - blob 실패 → document 는 시도하지 않고 제출 전체 실패
//   - blob 성공 + document 실패 → orphan blob (감지 가능, 복구는 범위 밖)
//
// 내부 재시도 없음. 재시도는 호출자 몫이며, 재제출은 새 id 의
// 새 엔트리를 만든다 (멱등성 비보장).
type Service struct {
	cfg     config.Config
	metrics *metrics.Metrics
	blob    store.BlobStore
	doc     store.DocumentStore
	locator Locator

	// 테스트 주입 지점. 운영 경로에서는 기본값 그대로 사용한다.
	now   func() time.Time
	newID func() string
}

func NewService(cfg config.Config, m *metrics.Metrics, blob store.BlobStore, doc store.DocumentStore, locator Locator) *Service {
	return &Service{
		cfg:     cfg,
		metrics: m,
		blob:    blob,
		doc:     doc,
		locator: locator,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Submit 은 제출 1건을 검증·보강 후 두 저장소에 기록하고
// 저장된 엔트리를 반환한다.
func (s *Service) Submit(ctx context.Context, sub Submission) (model.LogEntry, error) {
	atomic.AddInt64(&s.metrics.SubmissionsTotal, 1)

	// ------------------------------------------------------------
	// 1) 검증. 어떤 저장소 호출보다 먼저 수행한다.
	// ------------------------------------------------------------
	if sub.Message == "" {
		atomic.AddInt64(&s.metrics.SubmissionsRejectedValidationTotal, 1)
		return model.LogEntry{}, &ValidationError{Field: "message"}
	}

	// ------------------------------------------------------------
	// 2) Enrich: id / timestamp / 지역 정보 부여.
	//    level 은 기본값만 채우고 검증하지 않는다 (자유 문자열 허용).
	// ------------------------------------------------------------
	level := sub.Level
	if level == "" {
		level = string(model.LevelInfo)
	}

	entry := model.LogEntry{
		ID:        s.newID(),
		Message:   sub.Message,
		Level:     level,
		IP:        sub.IP,
		UserAgent: sub.UserAgent,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		Location:  s.locator.Lookup(sub.IP),
	}

	// ------------------------------------------------------------
	// 3) blob 쓰기. 키는 id 에서 결정적으로 유도.
	// ------------------------------------------------------------
	key := store.BlobKey(s.cfg.BlobPrefix, entry.ID)

	obj, err := store.EncodeEntry(entry, s.cfg.BlobGzip)
	if err != nil {
		// 직렬화 실패는 저장소 장애와 동일하게 제출 실패로 취급
		atomic.AddInt64(&s.metrics.BlobPutErrorsTotal, 1)
		return model.LogEntry{}, &PersistenceError{Store: StoreBlob, Err: err}
	}

	if err := s.blob.Put(ctx, key, obj); err != nil {
		atomic.AddInt64(&s.metrics.BlobPutErrorsTotal, 1)
		log.Error().Err(err).Str("id", entry.ID).Msg("blob put failed")
		return model.LogEntry{}, &PersistenceError{Store: StoreBlob, Err: err}
	}

	// ------------------------------------------------------------
	// 4) document 쓰기. blob 키를 포함해 기록한다.
	//    여기서 실패하면 orphan blob 이 남는다.
	// ------------------------------------------------------------
	entry.BlobKey = key

	if err := s.doc.Put(ctx, entry); err != nil {
		atomic.AddInt64(&s.metrics.DocPutErrorsTotal, 1)
		log.Error().Err(err).Str("id", entry.ID).Str("blobKey", key).
			Msg("document put failed after blob write (orphan blob)")
		return model.LogEntry{}, &PersistenceError{Store: StoreDocument, Err: err}
	}

	atomic.AddInt64(&s.metrics.SubmissionsAcceptedTotal, 1)
	log.Info().Str("id", entry.ID).Str("level", entry.Level).Msg("log stored")
	return entry, nil
}
