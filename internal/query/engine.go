// internal/query/engine.go
package query

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"logtracker/internal/metrics"
	"logtracker/internal/model"
	"logtracker/internal/store"

	"github.com/rs/zerolog/log"
)

// Filter 는 조회 조건이다. 빈 필드는 해당 조건 미적용을 뜻하며,
// 지정된 조건들은 모두 AND 로 결합된다.
type Filter struct {
	Level  string // 저장된 level 문자열과 대소문자 무시 일치
	IP     string // 정확히 일치
	Search string // message 부분 문자열 (대소문자 무시)
}

// Engine
// ------------------------------------------------------------
// document store full scan → 필터 → 최신순 정렬 → URL hydration.
//
// hydration 은 이 시스템에서 동시성이 의미 있는 유일한 구간이다:
// 살아남은 레코드 전체에 대해 presign 을 동시에 요청하되,
// 실패는 레코드 단위로 격리한다 (해당 레코드의 URL 만 비움).
// 레코드 1건의 발급 실패가 조회 전체를 실패시키는 일은 없다.
type Engine struct {
	metrics *metrics.Metrics
	doc     store.DocumentStore
	blob    store.BlobStore
	ttl     time.Duration // retrieval URL 유효기간
}

func NewEngine(m *metrics.Metrics, doc store.DocumentStore, blob store.BlobStore, ttl time.Duration) *Engine {
	return &Engine{
		metrics: m,
		doc:     doc,
		blob:    blob,
		ttl:     ttl,
	}
}

// Run 은 필터 조건에 맞는 엔트리를 최신순으로 반환한다.
// 빈 결과는 정상이며 에러가 아니다.
//
// 동일 timestamp 간 순서는 비결정적이다 (계약상 미지정).
func (e *Engine) Run(ctx context.Context, f Filter) ([]model.LogEntry, error) {
	atomic.AddInt64(&e.metrics.QueriesTotal, 1)

	// ------------------------------------------------------------
	// 1) full scan. 소규모 전제의 알려진 한계 (인터페이스 뒤에 격리됨).
	// ------------------------------------------------------------
	entries, err := e.doc.ScanAll(ctx)
	if err != nil {
		atomic.AddInt64(&e.metrics.DocScanErrorsTotal, 1)
		return nil, err
	}

	// ------------------------------------------------------------
	// 2) 필터 (AND 결합). 필드가 빠진 레코드는 해당 조건에서 탈락할 뿐
	//    에러를 내지 않는다.
	// ------------------------------------------------------------
	entries = applyFilter(entries, f)

	// ------------------------------------------------------------
	// 3) timestamp 내림차순 정렬.
	//    파싱 불가/누락 timestamp 는 epoch 취급 → 가장 뒤로 밀린다.
	// ------------------------------------------------------------
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Time().After(entries[j].Time())
	})

	// ------------------------------------------------------------
	// 4) URL hydration fan-out.
	// ------------------------------------------------------------
	e.hydrate(ctx, entries)

	return entries, nil
}

func applyFilter(entries []model.LogEntry, f Filter) []model.LogEntry {
	// ScanAll 구현이 내부 slice 를 공유할 수 있으므로 in-place 필터는 금지
	out := make([]model.LogEntry, 0, len(entries))
	search := strings.ToLower(f.Search)

	for _, en := range entries {
		if f.Level != "" && !strings.EqualFold(en.Level, f.Level) {
			continue
		}
		if f.IP != "" && en.IP != f.IP {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(en.Message), search) {
			continue
		}
		out = append(out, en)
	}
	return out
}

// hydrate 는 blobKey 를 가진 레코드마다 presigned URL 을 동시 발급한다.
//
// 보장하는 것은 "모든 레코드가 시도된다, 실패는 격리된다" 뿐이다:
// 재시도 없음, 에러 수집 없음. 실패한 레코드는 RetrievalURL 이 빈 채로
// 반환된다. blobKey 가 없는 레코드(브릿지 경유 등)는 항상 빈 URL.
func (e *Engine) hydrate(ctx context.Context, entries []model.LogEntry) {
	var wg sync.WaitGroup

	for i := range entries {
		if entries[i].BlobKey == "" {
			continue
		}

		wg.Add(1)
		go func(en *model.LogEntry) {
			defer wg.Done()

			url, err := e.blob.Sign(ctx, en.BlobKey, e.ttl)
			if err != nil {
				atomic.AddInt64(&e.metrics.SignErrorsTotal, 1)
				log.Warn().Err(err).Str("blobKey", en.BlobKey).Msg("sign failed, url omitted")
				return
			}
			en.RetrievalURL = url
		}(&entries[i])
	}

	wg.Wait()
}
