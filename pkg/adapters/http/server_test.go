package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/formflow/internal/ratelimit"
	"github.com/aretw0/formflow/internal/runtime"
	formhttp "github.com/aretw0/formflow/pkg/adapters/http"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	redisadapter "github.com/aretw0/formflow/pkg/adapters/redis"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/observability"
	"github.com/aretw0/formflow/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyForm = `{
	"title": "Survey",
	"schema": {
		"nodes": [
			{"id": "start", "type": "start", "data": {"label": "Welcome"}},
			{"id": "q1", "type": "input", "data": {"label": "Name?", "validation": {"required": true}}},
			{"id": "q2", "type": "choice", "data": {"label": "Continue?", "validation": {"required": true},
				"options": [{"label": "Yes", "value": "yes"}, {"label": "No", "value": "no"}]}}
		],
		"edges": [
			{"id": "e0", "source": "start", "target": "q1"},
			{"id": "e1", "source": "q1", "target": "q2"}
		]
	}
}`

func newEngine(t *testing.T, store interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, string, time.Duration) error
	Delete(context.Context, string) error
}, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	repo, err := memory.NewRepositoryFromJSON(map[string]string{"survey": surveyForm})
	require.NoError(t, err)
	return runtime.NewEngine(repo, session.NewTracker(store), opts...)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeDescriptor(t *testing.T, w *httptest.ResponseRecorder) domain.ActionDescriptor {
	t.Helper()
	var d domain.ActionDescriptor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	return d
}

func TestServer_FullFlow(t *testing.T) {
	h := formhttp.NewHandler(newEngine(t, memory.NewStore()))
	base := "/api/actions/forms/survey"

	w := do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "at_entry", w.Header().Get(formhttp.HeaderState))
	assert.NotEmpty(t, w.Header().Get(formhttp.HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"href":"/api/actions/forms/survey?next_node=q1"`)

	w = do(t, h, http.MethodPost, base+"?next_node=q1", `{"account":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "advanced", w.Header().Get(formhttp.HeaderState))
	assert.Equal(t, "q1", w.Header().Get(formhttp.HeaderNode))

	w = do(t, h, http.MethodPost, base+"?node=q1", `{"account":"alice","input":"  "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invalid", w.Header().Get(formhttp.HeaderState))
	d := decodeDescriptor(t, w)
	require.NotNil(t, d.Error)
	assert.Equal(t, "Please provide a valid answer", d.Error.Message)

	w = do(t, h, http.MethodPost, base+"?node=q1", `{"account":"alice","input":"Alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "q2", w.Header().Get(formhttp.HeaderNode))
	d = decodeDescriptor(t, w)
	require.Len(t, d.Links.Actions, 2)
	assert.Equal(t, base+"?choice=yes&next=end", d.Links.Actions[0].Href)

	w = do(t, h, http.MethodGet, base+"?account=alice", "")
	assert.Equal(t, "awaiting_input", w.Header().Get(formhttp.HeaderState))
	assert.Equal(t, "q2", w.Header().Get(formhttp.HeaderNode))

	// Choice hrefs carry the answer in the query string.
	w = do(t, h, http.MethodPost, base+"?choice=yes&next=end&account=alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "terminal", w.Header().Get(formhttp.HeaderState))
	d = decodeDescriptor(t, w)
	assert.Equal(t, base+"/complete", d.Links.Actions[0].Href)

	w = do(t, h, http.MethodPost, base+"/complete", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Thank you for completing the form!", decodeDescriptor(t, w).Title)
}

type downStore struct{}

func (downStore) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func (downStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

func (downStore) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func TestServer_Errors(t *testing.T) {
	h := formhttp.NewHandler(newEngine(t, memory.NewStore()), formhttp.WithMaxInputSize(8))

	t.Run("unknown form", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/actions/forms/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"message"`)
		assert.NotContains(t, w.Body.String(), "links")
	})

	t.Run("bad body", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/actions/forms/survey", `{"account":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("input too large", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/actions/forms/survey", `{"account":"a","input":"123456789"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store unavailable", func(t *testing.T) {
		h := formhttp.NewHandler(newEngine(t, downStore{}))
		w := do(t, h, http.MethodGet, "/api/actions/forms/survey?account=alice", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w = do(t, h, http.MethodGet, "/api/actions/forms/survey", "")
		assert.Equal(t, http.StatusOK, w.Code, "anonymous renders never touch the store")
	})

	t.Run("lock store unavailable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })
		mr.Close()

		locker := redisadapter.NewLocker(client, "")
		h := formhttp.NewHandler(newEngine(t, memory.NewStore(), runtime.WithLocker(locker, time.Second)))
		w := do(t, h, http.MethodPost, "/api/actions/forms/survey", `{"account":"alice","input":"x"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "Internal Server Error")
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, formhttp.StatusFor(domain.ErrFormNotFound))
	assert.Equal(t, http.StatusNotFound, formhttp.StatusFor(domain.ErrNodeNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, formhttp.StatusFor(domain.ErrStoreUnavailable))
	assert.Equal(t, http.StatusInternalServerError, formhttp.StatusFor(errors.New("boom")))
}

func TestServer_CORSPreflight(t *testing.T) {
	h := formhttp.NewHandler(newEngine(t, memory.NewStore()))

	w := do(t, h, http.MethodOptions, "/api/actions/forms/survey", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RateLimit(t *testing.T) {
	h := formhttp.NewHandler(newEngine(t, memory.NewStore()),
		formhttp.WithLimiter(ratelimit.New(0.001, 2, time.Minute)))

	for i := 0; i < 2; i++ {
		w := do(t, h, http.MethodGet, "/api/actions/forms/survey?account=alice", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := do(t, h, http.MethodGet, "/api/actions/forms/survey?account=alice", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	w = do(t, h, http.MethodGet, "/api/actions/forms/survey?account=bob", "")
	assert.Equal(t, http.StatusOK, w.Code, "other participants are unaffected")

	w = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code, "only form routes are limited")
}

func TestServer_RateLimitSubmitByAccount(t *testing.T) {
	h := formhttp.NewHandler(newEngine(t, memory.NewStore()),
		formhttp.WithLimiter(ratelimit.New(0.001, 1, time.Minute)))
	base := "/api/actions/forms/survey"

	w := do(t, h, http.MethodPost, base, `{"account":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, base, `{"account":"bob"}`)
	assert.Equal(t, http.StatusOK, w.Code, "participants sharing an address have separate budgets")

	w = do(t, h, http.MethodPost, base, `{"account":"alice"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestServer_Discovery(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	engine := newEngine(t, memory.NewStore(), runtime.WithLifecycleHooks(metrics.Hooks()))
	h := formhttp.NewHandler(engine,
		formhttp.WithBasePath("/v1/forms/"),
		formhttp.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	w := do(t, h, http.MethodGet, "/actions.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rules":[{"pathPattern":"/forms/*","apiPath":"/v1/forms/*"}]}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/v1/forms/survey", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `formflow_renders_total{form_id="survey",state="at_entry"} 1`)

	w = do(t, h, http.MethodGet, "/api/forms/survey", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Survey"`)
}
