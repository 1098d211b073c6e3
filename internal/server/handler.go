package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"logtracker/internal/bridge"
	"logtracker/internal/config"
	"logtracker/internal/ingest"
	"logtracker/internal/metrics"
	"logtracker/internal/model"
	"logtracker/internal/query"
	"logtracker/internal/stats"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// 핵심 서비스 의존성. 테스트에서 fake 로 대체한다.
type Submitter interface {
	Submit(ctx context.Context, sub ingest.Submission) (model.LogEntry, error)
}

type Querier interface {
	Run(ctx context.Context, f query.Filter) ([]model.LogEntry, error)
}

type Streamer interface {
	Recent(ctx context.Context) ([]model.LogEntry, error)
}

type Handler struct {
	cfg     config.Config
	metrics *metrics.Metrics
	ingest  Submitter
	query   Querier
	stream  Streamer
}

func NewHandler(cfg config.Config, m *metrics.Metrics, in Submitter, q Querier, st Streamer) *Handler {
	return &Handler{
		cfg:     cfg,
		metrics: m,
		ingest:  in,
		query:   q,
		stream:  st,
	}
}

// submitRequest 는 POST /log 의 body 형태다. 그 외 필드는 무시한다.
type submitRequest struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

// HandleSubmit
//
// POST /log — 로그 1건 수집.
//  1. body 크기 제한(MaxBodySize) + JSON 디코드
//  2. 요청 컨텍스트(클라이언트 IP, User-Agent) 수집
//  3. ingest.Service 에 위임 (검증 → enrich → 이중 쓰기)
//  4. 에러 타입 → 상태코드 매핑 (ValidationError 400 / PersistenceError 500)
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodySize)
	defer r.Body.Close()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "invalid JSON body",
		})
		return
	}

	entry, err := h.ingest.Submit(r.Context(), ingest.Submission{
		Message:   req.Message,
		Level:     req.Level,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"status":  "error",
				"message": verr.Error(),
			})
			return
		}
		// PersistenceError 포함 그 외 전부 5xx
		log.Error().Err(err).Msg("submit failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "error uploading log",
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status": "success",
		"logId":  entry.ID,
	})
}

// HandleQuery
//
// GET /logs?level=&ip=&search= — 필터/정렬/hydration 을 거친 엔트리 목록.
// 빈 결과는 200 + 빈 배열이다.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.query.Run(r.Context(), filterFromQuery(r))
	if err != nil {
		log.Error().Err(err).Msg("query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "error fetching filtered logs",
		})
		return
	}

	if entries == nil {
		entries = []model.LogEntry{} // null 이 아니라 [] 로 직렬화
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleStats
//
// GET /stats?level=&ip=&search= — 동일 필터 결과에 대한 집계.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.query.Run(r.Context(), filterFromQuery(r))
	if err != nil {
		log.Error().Err(err).Msg("stats query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "error computing stats",
		})
		return
	}

	writeJSON(w, http.StatusOK, stats.Aggregate(entries))
}

// HandleCloudWatch
//
// GET /cloudwatch-logs — 외부 스트림 브릿지 경로.
// document store 경로와 병합되지 않는 독립 조회다.
func (h *Handler) HandleCloudWatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.stream.Recent(r.Context())
	if err != nil {
		var serr *bridge.ExternalSourceError
		if errors.As(err, &serr) {
			log.Error().Err(err).Msg("cloudwatch bridge failed")
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"message": "error fetching CloudWatch logs",
				"error":   serr.Op,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "error fetching CloudWatch logs",
		})
		return
	}

	if entries == nil {
		entries = []model.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleMetrics
//
// 서버 상태를 나타내는 카운터 값들을 출력한다.
// Prometheus pull 방식으로도 쉽게 전환 가능.
func (h *Handler) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, h.metrics.String())
}

func filterFromQuery(r *http.Request) query.Filter {
	q := r.URL.Query()
	return query.Filter{
		Level:  q.Get("level"),
		IP:     q.Get("ip"),
		Search: q.Get("search"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("response encode failed")
	}
}
