package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures a Client. A zero Timeout means no timeout.
type Options struct {
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    *logrus.Logger
}

// Client performs the single outbound GET behind every proxy endpoint.
type Client struct {
	follow   *http.Client
	noFollow *http.Client
	logger   *logrus.Logger
}

// Response is a fully read backend response.
type Response struct {
	Status int
	Body   []byte
}

// TransportError reports that no complete response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err came from a failed exchange with the backend.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func New(opts Options) *Client {
	t := opts.Transport
	if t == nil {
		t = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		follow: &http.Client{Transport: t, Timeout: opts.Timeout},
		noFollow: &http.Client{
			Transport: t,
			Timeout:   opts.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: log,
	}
}

// Get issues one GET to rawURL. Redirects are followed only when follow is
// set; otherwise the 3xx response itself is returned.
func (c *Client) Get(ctx context.Context, rawURL string, follow bool) (*Response, error) {
	if c.logger.IsLevelEnabled(logrus.DebugLevel) {
		c.logger.WithFields(logrus.Fields{
			"url":    rawURL,
			"follow": follow,
		}).Debug("upstream.request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	hc := c.noFollow
	if follow {
		hc = c.follow
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	if c.logger.IsLevelEnabled(logrus.DebugLevel) {
		c.logger.WithFields(logrus.Fields{
			"url":           rawURL,
			"status":        res.StatusCode,
			"response_body": string(data),
		}).Debug("upstream.response")
	}

	return &Response{Status: res.StatusCode, Body: data}, nil
}
