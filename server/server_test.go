package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/juris/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	mu       sync.Mutex
	question string
	userID   string
	answer   string
	outcome  core.QueryOutcome
	panicMsg string
}

func (f *fakeAnswerer) Query(_ context.Context, question, userID string) (string, core.QueryOutcome) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.question, f.userID = question, userID
	return f.answer, f.outcome
}

type countingSweeper struct {
	calls atomic.Int64
}

func (c *countingSweeper) Sweep(time.Time) int {
	c.calls.Add(1)
	return 1
}

func newTestServer(t *testing.T, a Answerer, opts ...Option) http.Handler {
	t.Helper()
	s, err := NewServer(a, opts...)
	require.NoError(t, err)
	return s.Handler()
}

func postQuery(t *testing.T, h http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:51234"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleQuery(t *testing.T) {
	a := &fakeAnswerer{
		answer:  "Réponse",
		outcome: core.QueryOutcome{UsedKnowledgeBase: true, ChunksFound: 3, QueriesGenerated: 6},
	}
	h := newTestServer(t, a)

	rec := postQuery(t, h, `{"question":"Qu'est-ce qu'un bail?","user_id":"alice"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp queryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Réponse", resp.Answer)
	assert.True(t, resp.Metadata.UsedKnowledgeBase)
	assert.Equal(t, 3, resp.Metadata.ChunksFound)
	assert.Equal(t, 6, resp.Metadata.QueriesGenerated)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, rec.Header().Get(middleware.RequestIDHeader))

	assert.Equal(t, "Qu'est-ce qu'un bail?", a.question)
	assert.Equal(t, "alice", a.userID)
}

func TestHandleQuery_BlockedStillOK(t *testing.T) {
	a := &fakeAnswerer{
		answer:  "⏳ Trop de requêtes!",
		outcome: core.QueryOutcome{Blocked: true, BlockReason: "⏳ Trop de requêtes!"},
	}
	rec := postQuery(t, newTestServer(t, a), `{"question":"x"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp queryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Metadata.Blocked)
	assert.Equal(t, "⏳ Trop de requêtes!", resp.Metadata.BlockReason)
}

func TestHandleQuery_CallerID(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		header map[string]string
		want   string
	}{
		{"body wins", `{"question":"q","user_id":" bob "}`, map[string]string{HeaderUserID: "carol"}, "bob"},
		{"header", `{"question":"q"}`, map[string]string{HeaderUserID: "carol"}, "carol"},
		{"remote address", `{"question":"q"}`, nil, "203.0.113.7"},
		{"forwarded address", `{"question":"q"}`, map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAnswerer{}
			rec := postQuery(t, newTestServer(t, a), tt.body, tt.header)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, a.userID)
		})
	}
}

func TestHandleQuery_BadBody(t *testing.T) {
	a := &fakeAnswerer{}
	rec := postQuery(t, newTestServer(t, a), `{"question":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
	assert.Empty(t, a.userID, "answerer must not run")
}

func TestHandleQuery_BodyTooLarge(t *testing.T) {
	body := `{"question":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := postQuery(t, newTestServer(t, &fakeAnswerer{}), body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestID_Reused(t *testing.T) {
	rec := postQuery(t, newTestServer(t, &fakeAnswerer{}), `{"question":"q"}`,
		map[string]string{middleware.RequestIDHeader: "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	rec := postQuery(t, newTestServer(t, &fakeAnswerer{panicMsg: "boom"}), `{"question":"q"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newTestServer(t, &fakeAnswerer{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "juris_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := newTestServer(t, &fakeAnswerer{}, WithGatherer(reg))
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "juris_test_total 1")
}

func TestMetrics_NotMounted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	newTestServer(t, &fakeAnswerer{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStart_SweepsAndShutsDown(t *testing.T) {
	sw := &countingSweeper{}
	s, err := NewServer(&fakeAnswerer{},
		WithAddr("127.0.0.1:0"),
		WithSweeper(sw, 5*time.Millisecond),
		WithLogger(nil),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return sw.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil)
	assert.ErrorIs(t, err, ErrAnswererRequired)

	_, err = NewServer(&fakeAnswerer{}, WithSweeper(&countingSweeper{}, 0))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewServer(&fakeAnswerer{}, WithAddr(""))
	assert.Error(t, err)

	_, err = NewServer(&fakeAnswerer{}, WithRequestTimeout(-time.Second))
	assert.Error(t, err)
}
