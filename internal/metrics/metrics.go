package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "addictiontube_gateway_requests_total",
		Help: "Total number of HTTP requests to gateway",
	}, []string{"method", "path", "status"})

	HttpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "addictiontube_gateway_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	// UpstreamRequestsTotal counts proxy outcomes per route:
	// ok, upstream_error, transport_error, invalid.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "addictiontube_proxy_upstream_requests_total",
		Help: "Proxy requests by route and outcome",
	}, []string{"route", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "addictiontube_proxy_upstream_duration_seconds",
		Help:    "Duration of backend calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
