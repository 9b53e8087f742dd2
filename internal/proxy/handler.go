package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"addictiontube/internal/logger"
	"addictiontube/internal/metrics"
	"addictiontube/internal/upstream"
)

// Getter performs the outbound call. *upstream.Client implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string, follow bool) (*upstream.Response, error)
}

// Handler serves one Route.
type Handler struct {
	route  Route
	client Getter
	log    *logrus.Logger
}

func NewHandler(route Route, client Getter, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{route: route, client: client, log: log}
}

// failure is an answer produced by the gateway itself rather than relayed
// from the backend.
type failure struct {
	status  int
	message string
	details string
}

// ServeHTTP validates the request, forwards it and relays the backend body
// unchanged.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, body, f := h.serve(r.Context(), r.URL.Query())
	if f != nil {
		WriteError(w, f.status, f.message, f.details)
		return
	}
	writeRawJSON(w, status, body)
}

// Serve runs the endpoint for the caller parameters v and returns the JSON
// status and body to send. Status is 200 unless the route mirrors the
// backend status or reports transport errors.
func (h *Handler) Serve(ctx context.Context, v url.Values) (int, []byte) {
	status, body, f := h.serve(ctx, v)
	if f != nil {
		return f.status, errorBody(f.message, f.details)
	}
	return status, body
}

func (h *Handler) serve(ctx context.Context, v url.Values) (int, []byte, *failure) {
	name := h.route.Name

	req, err := ParseRequest(v)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "invalid").Inc()
		return 0, nil, &failure{status: http.StatusBadRequest, message: MsgMissingParams}
	}

	target := h.route.TargetURL(req)
	start := time.Now()
	done := logger.Track(ctx, "upstream "+name)
	resp, err := h.client.Get(ctx, target, h.route.FollowRedirects)
	done()
	metrics.UpstreamDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		return h.callFailure(ctx, target, err)
	}

	outcome := "ok"
	if resp.Status >= http.StatusBadRequest {
		outcome = "upstream_error"
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(name, outcome).Inc()

	status := http.StatusOK
	if h.route.MirrorStatus && resp.Status != 0 {
		status = resp.Status
	}
	return status, resp.Body, nil
}

// callFailure handles a call that produced no backend response. Transport
// failures and requests that could not be built are counted apart; both
// answer the same way.
func (h *Handler) callFailure(ctx context.Context, target string, err error) (int, []byte, *failure) {
	name := h.route.Name
	entry := h.log.WithError(err).WithFields(logrus.Fields{
		"request_id": logger.IDFrom(ctx),
		"route":      name,
		"url":        target,
	})

	switch {
	case !upstream.IsTransport(err):
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "request_error").Inc()
		entry.Error("upstream.request.invalid")
	case errors.Is(err, context.Canceled):
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "transport_error").Inc()
		entry.Info("upstream.canceled")
	default:
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "transport_error").Inc()
		entry.Error("upstream.request.failed")
	}

	if h.route.TransportErrors {
		return 0, nil, &failure{status: http.StatusInternalServerError, message: MsgTransport, details: err.Error()}
	}
	// Routes without transport reporting answer with the failed call's
	// empty result.
	return http.StatusOK, nil, nil
}

// Register mounts a handler per route on mux, GET only.
func Register(mux *http.ServeMux, routes []Route, client Getter, log *logrus.Logger) map[string]*Handler {
	handlers := make(map[string]*Handler, len(routes))
	for _, rt := range routes {
		h := NewHandler(rt, client, log)
		handlers[rt.Name] = h
		for _, p := range rt.Patterns {
			mux.Handle("GET "+p, h)
		}
	}
	return handlers
}
