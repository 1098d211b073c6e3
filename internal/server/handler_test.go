package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"logtracker/internal/bridge"
	"logtracker/internal/config"
	"logtracker/internal/ingest"
	"logtracker/internal/metrics"
	"logtracker/internal/model"
	"logtracker/internal/query"

	json "github.com/goccy/go-json"
)

type fakeSubmitter struct {
	gotSub ingest.Submission
	entry  model.LogEntry
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, sub ingest.Submission) (model.LogEntry, error) {
	f.gotSub = sub
	if f.err != nil {
		return model.LogEntry{}, f.err
	}
	return f.entry, nil
}

type fakeQuerier struct {
	gotFilter query.Filter
	entries   []model.LogEntry
	err       error
}

func (f *fakeQuerier) Run(_ context.Context, filter query.Filter) ([]model.LogEntry, error) {
	f.gotFilter = filter
	return f.entries, f.err
}

type fakeStreamer struct {
	entries []model.LogEntry
	err     error
}

func (f *fakeStreamer) Recent(context.Context) ([]model.LogEntry, error) {
	return f.entries, f.err
}

func newTestHandler(sub *fakeSubmitter, q *fakeQuerier, st *fakeStreamer) *Handler {
	cfg := config.Config{MaxBodySize: 64 * 1024}
	return NewHandler(cfg, metrics.New(), sub, q, st)
}

func TestHandleSubmit(t *testing.T) {
	sub := &fakeSubmitter{entry: model.LogEntry{ID: "id-9"}}
	h := newTestHandler(sub, &fakeQuerier{}, &fakeStreamer{})

	body := `{"message":"API rate limit exceeded","level":"warn"}`
	req := httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(body))
	req.Header.Set("X-Forwarded-For", "8.8.8.8")
	req.Header.Set("User-Agent", "dash/1.0")
	w := httptest.NewRecorder()

	h.HandleSubmit(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "success" || resp["logId"] != "id-9" {
		t.Errorf("resp = %v", resp)
	}

	if sub.gotSub.Message != "API rate limit exceeded" || sub.gotSub.Level != "warn" {
		t.Errorf("submission = %+v", sub.gotSub)
	}
	if sub.gotSub.IP != "8.8.8.8" {
		t.Errorf("ip = %q, want forwarded ip", sub.gotSub.IP)
	}
	if sub.gotSub.UserAgent != "dash/1.0" {
		t.Errorf("userAgent = %q", sub.gotSub.UserAgent)
	}
}

func TestHandleSubmitErrors(t *testing.T) {
	// ValidationError → 400
	sub := &fakeSubmitter{err: &ingest.ValidationError{Field: "message"}}
	h := newTestHandler(sub, &fakeQuerier{}, &fakeStreamer{})

	req := httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(`{"message":""}`))
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("validation status = %d, want 400", w.Code)
	}

	// PersistenceError → 500
	sub.err = &ingest.PersistenceError{Store: ingest.StoreBlob, Err: errors.New("s3 down")}
	w = httptest.NewRecorder()
	h.HandleSubmit(w, httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(`{"message":"m"}`)))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("persistence status = %d, want 500", w.Code)
	}

	// 깨진 JSON → 400
	w = httptest.NewRecorder()
	h.HandleSubmit(w, httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(`{`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", w.Code)
	}

	// GET → 405
	w = httptest.NewRecorder()
	h.HandleSubmit(w, httptest.NewRequest(http.MethodGet, "/log", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", w.Code)
	}
}

func TestHandleQuery(t *testing.T) {
	q := &fakeQuerier{entries: []model.LogEntry{{ID: "1", Message: "m"}}}
	h := newTestHandler(&fakeSubmitter{}, q, &fakeStreamer{})

	req := httptest.NewRequest(http.MethodGet, "/logs?level=warn&ip=1.2.3.4&search=db", nil)
	w := httptest.NewRecorder()
	h.HandleQuery(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	want := query.Filter{Level: "warn", IP: "1.2.3.4", Search: "db"}
	if q.gotFilter != want {
		t.Errorf("filter = %+v, want %+v", q.gotFilter, want)
	}

	var entries []model.LogEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHandleQueryEmptyIsArray(t *testing.T) {
	h := newTestHandler(&fakeSubmitter{}, &fakeQuerier{}, &fakeStreamer{})

	w := httptest.NewRecorder()
	h.HandleQuery(w, httptest.NewRequest(http.MethodGet, "/logs", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("empty body = %q, want []", got)
	}
}

func TestHandleCloudWatch(t *testing.T) {
	st := &fakeStreamer{entries: []model.LogEntry{{ID: "cw", IP: model.ExternalSourceIP}}}
	h := newTestHandler(&fakeSubmitter{}, &fakeQuerier{}, st)

	w := httptest.NewRecorder()
	h.HandleCloudWatch(w, httptest.NewRequest(http.MethodGet, "/cloudwatch-logs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	// ExternalSourceError → 502
	st.err = &bridge.ExternalSourceError{Op: "describe-streams", Err: errors.New("down")}
	w = httptest.NewRecorder()
	h.HandleCloudWatch(w, httptest.NewRequest(http.MethodGet, "/cloudwatch-logs", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("bridge error status = %d, want 502", w.Code)
	}
}

func TestHandleStats(t *testing.T) {
	q := &fakeQuerier{entries: []model.LogEntry{
		{Level: "error", Timestamp: "2025-06-01T10:00:00Z"},
		{Level: "info", Timestamp: "2025-06-01T10:30:00Z"},
	}}
	h := newTestHandler(&fakeSubmitter{}, q, &fakeStreamer{})

	w := httptest.NewRecorder()
	h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Total  int            `json:"total"`
		Levels map[string]int `json:"levels"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || resp.Levels["error"] != 1 || resp.Levels["info"] != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestCORS(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := CORS(inner)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/log", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs", nil))
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header on normal request")
	}
}
