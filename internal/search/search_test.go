package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		results int
		errMsg  string
		invalid bool
	}{
		{name: "results", body: `{"results":[{"title":"A","description":"d","score":0.5,"category_id":"poem"}]}`, results: 1},
		{name: "empty results", body: `{"results":[]}`, results: 0},
		{name: "error arm", body: `{"error":"x"}`, errMsg: "x"},
		{name: "error with details", body: `{"error":"CURL Error","details":"timeout"}`, errMsg: "CURL Error"},
		{name: "both arms", body: `{"error":"x","results":[]}`, errMsg: "x"},
		{name: "empty object", body: `{}`, invalid: true},
		{name: "array", body: `[]`, invalid: true},
		{name: "null results", body: `{"results":null}`, invalid: true},
		{name: "missing score", body: `{"results":[{"title":"A"}]}`, invalid: true},
		{name: "null error beside results", body: `{"error":null,"results":[{"title":"t","score":0.5}]}`, results: 1},
		{name: "falsy errors beside results", body: `{"error":"","results":[]}`, results: 0},
		{name: "null text fields", body: `{"results":[{"title":null,"description":null,"score":1,"category_id":null}]}`, results: 1},
		{name: "error beside bad results", body: `{"error":"x","results":"nope"}`, errMsg: "x"},
		{name: "empty error alone", body: `{"error":""}`, invalid: true},
		{name: "null score", body: `{"results":[{"title":"A","score":null}]}`, invalid: true},
		{name: "not json", body: `<html>`, invalid: true},
		{name: "empty body", body: ``, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.body))
			if tt.invalid {
				require.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			if tt.errMsg != "" {
				require.True(t, p.Failed())
				assert.Equal(t, tt.errMsg, p.Err.Error)
				assert.Nil(t, p.Results)
				return
			}
			assert.False(t, p.Failed())
			assert.Len(t, p.Results, tt.results)
		})
	}
}

func TestDecodeKeepsBackendOrder(t *testing.T) {
	p, err := Decode([]byte(`{"results":[{"title":"low","score":0.1},{"title":"high","score":0.9}]}`))
	require.NoError(t, err)
	require.Len(t, p.Results, 2)
	assert.Equal(t, "low", p.Results[0].Title)
	assert.Equal(t, "high", p.Results[1].Title)
}

func TestDecodeAnswer(t *testing.T) {
	a, e, err := DecodeAnswer([]byte(`{"answer":"Take it one day at a time."}`))
	require.NoError(t, err)
	require.Nil(t, e)
	assert.Equal(t, "Take it one day at a time.", a.Answer)

	a, e, err = DecodeAnswer([]byte(`{"error":"Missing query or category"}`))
	require.NoError(t, err)
	require.Nil(t, a)
	assert.Equal(t, "Missing query or category", e.Error)

	a, e, err = DecodeAnswer([]byte(`{"answer":"ok","error":null}`))
	require.NoError(t, err)
	require.Nil(t, e)
	assert.Equal(t, "ok", a.Answer)

	_, _, err = DecodeAnswer([]byte(``))
	require.Error(t, err)
}

func TestServiceFetch(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "rid-1")
		_, _ = w.Write([]byte(`{"results":[{"title":"Recovery","description":"","score":0.75,"category_id":"poem"}]}`))
	}))
	defer srv.Close()

	s := New(srv.URL+"/", 5*time.Second)

	reply, err := s.Fetch(context.Background(), PathSearch, Request{Query: "rock & roll", Category: "poem", Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, reply.Status)
	assert.Equal(t, "rid-1", reply.Trace)
	assert.Equal(t, PathSearch, gotPath)
	assert.Equal(t, "category=poem&page=2&per_page=5&q=rock+%26+roll", gotQuery)

	p, err := Decode(reply.Body)
	require.NoError(t, err)
	require.Len(t, p.Results, 1)

	_, err = s.Fetch(context.Background(), PathUnifiedSearch, Request{Query: "recovery", Category: "poem"})
	require.NoError(t, err)
	assert.Equal(t, PathUnifiedSearch, gotPath)
	assert.Equal(t, "category=poem&q=recovery", gotQuery)
}

func TestServiceAnswer(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer srv.Close()

	a, e, err := New(srv.URL, time.Second).Answer(context.Background(), "q", "poem", true)
	require.NoError(t, err)
	require.Nil(t, e)
	assert.Equal(t, "ok", a.Answer)
	assert.Equal(t, PathUnifiedAnswer, gotPath)
}
