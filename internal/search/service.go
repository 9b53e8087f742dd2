package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Gateway paths called by Service.
const (
	PathSearch        = "/search.php"
	PathUnifiedSearch = "/unified/unified-search-proxy.php"
	PathAnswer        = "/rag-answer.php"
	PathUnifiedAnswer = "/unified/unified-rag-answer.php"
)

// Service talks to the gateway over HTTP.
type Service struct {
	baseURL string
	client  *http.Client
}

// New creates a Service for the gateway at baseURL.
func New(baseURL string, timeout time.Duration) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Reply is a raw gateway response.
type Reply struct {
	Status int
	Body   []byte
	Trace  string
}

// Fetch performs a GET on path with the caller parameters encoded.
func (s *Service) Fetch(ctx context.Context, path string, req Request) (*Reply, error) {
	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("category", req.Category)
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(req.PerPage))
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("gateway do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway read: %w", err)
	}
	return &Reply{Status: resp.StatusCode, Body: body, Trace: resp.Header.Get("X-Request-Id")}, nil
}

// Answer queries a RAG answer endpoint.
func (s *Service) Answer(ctx context.Context, query, category string, unified bool) (*Answer, *ErrorPayload, error) {
	path := PathAnswer
	if unified {
		path = PathUnifiedAnswer
	}
	reply, err := s.Fetch(ctx, path, Request{Query: query, Category: category})
	if err != nil {
		return nil, nil, err
	}
	return DecodeAnswer(reply.Body)
}
