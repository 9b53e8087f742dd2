package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addictiontube/internal/config"
)

func newTestServer(t *testing.T, backend http.HandlerFunc) (*Server, *httptest.Server) {
	t.Helper()
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	for k := range cfg.Backends {
		cfg.Backends[k] = upstream.URL
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := New(cfg, nil, log)
	require.NoError(t, err)
	return s, upstream
}

func serve(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestUnifiedSearchScenario(t *testing.T) {
	var gotURI string
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"results":[{"title":"Recovery","description":"d","score":0.9,"category_id":"poem"},{"title":"Dawn","description":"e","score":0.5,"category_id":"poem"}]}`))
	})

	rec := serve(s, "/unified/unified-search-proxy.php?q=recovery&category=poem")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/search?q=recovery&category_id=poem", gotURI)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = serve(s, "/unified/unified-search.php?q=recovery&category=poem")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	titles := doc.Find("#results .result-item h3").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"Recovery", "Dawn"}, titles)
}

func TestPaginatedScenario(t *testing.T) {
	var gotURI string
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	rec := serve(s, "/search.php?q=recovery&category=poem")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"results":[]}`, rec.Body.String())
	assert.Equal(t, "/search?q=recovery&category_id=poem&page=1&per_page=5", gotURI)
}

func TestPageShowsProxyErrors(t *testing.T) {
	s, upstream := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	upstream.Close()

	rec := serve(s, "/unified-search.php?q=x&category=song")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, "Error: CURL Error", doc.Find("#results p").Text())
}

func TestPageWithoutCategoryNeverCallsBackend(t *testing.T) {
	calls := 0
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	rec := serve(s, "/unified/unified-search.php?q=recovery")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, "Error: Missing query or category", doc.Find("#results p").Text())
	assert.Zero(t, calls)
}

func TestStaticAssets(t *testing.T) {
	s, _ := newTestServer(t, func(http.ResponseWriter, *http.Request) {})

	rec := serve(s, "/js/unified-search.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/unified/unified-search-proxy.php")

	rec = serve(s, "/css/style.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".result-item")
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, func(http.ResponseWriter, *http.Request) {})

	rec := serve(s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var h healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.True(t, h.OK)
	assert.Equal(t, "addictiontube-gateway", h.Service)
	assert.Equal(t, 5, h.Routes)

	serve(s, "/rag-answer.php")
	rec = serve(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "addictiontube_gateway_requests_total")
	assert.Contains(t, rec.Body.String(), `addictiontube_proxy_upstream_requests_total{outcome="invalid",route="rag_answer"}`)
}

func TestUnknownPath(t *testing.T) {
	s, _ := newTestServer(t, func(http.ResponseWriter, *http.Request) {})
	assert.Equal(t, http.StatusNotFound, serve(s, "/nope.php").Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Gateway.Host = "127.0.0.1"
	cfg.Gateway.Port = freePort(t)

	log := logrus.New()
	log.SetOutput(io.Discard)
	s, err := New(cfg, nil, log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Gateway.Address() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
