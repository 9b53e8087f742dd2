package proxy

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"addictiontube/internal/config"
	"addictiontube/internal/search"
)

// ErrMissingParams is returned by ParseRequest when q or category is empty.
var ErrMissingParams = errors.New(MsgMissingParams)

// Route is one proxy endpoint: where it forwards and how it relays.
type Route struct {
	Name            string
	Patterns        []string
	BaseURL         string
	Path            string
	Paginate        bool
	MirrorStatus    bool
	TransportErrors bool
	FollowRedirects bool
}

// RoutesFromConfig resolves every configured route against its backend.
func RoutesFromConfig(cfg *config.Config) ([]Route, error) {
	routes := make([]Route, 0, len(cfg.Routes))
	for _, rc := range cfg.Routes {
		base, err := cfg.BaseURL(rc)
		if err != nil {
			return nil, err
		}
		routes = append(routes, Route{
			Name:            rc.Name,
			Patterns:        rc.Patterns,
			BaseURL:         strings.TrimRight(base, "/"),
			Path:            rc.Path,
			Paginate:        rc.Paginate,
			MirrorStatus:    rc.MirrorStatus,
			TransportErrors: rc.TransportErrors,
			FollowRedirects: rc.FollowRedirects,
		})
	}
	return routes, nil
}

// ParseRequest is the shared guard: q and category must be present and not
// empty, where "0" counts as empty. Values are not trimmed. A repeated
// parameter takes its last value. page and per_page fall back to their
// defaults unless they are positive integers.
func ParseRequest(v url.Values) (search.Request, error) {
	req := search.Request{
		Query:    param(v, "q"),
		Category: param(v, "category"),
		Page:     positiveOr(param(v, "page"), search.DefaultPage),
		PerPage:  positiveOr(param(v, "per_page"), search.DefaultPerPage),
	}
	if empty(req.Query) || empty(req.Category) {
		return search.Request{}, ErrMissingParams
	}
	return req, nil
}

func param(v url.Values, key string) string {
	vs := v[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

func empty(s string) bool { return s == "" || s == "0" }

// TargetURL builds the backend URL for req. Parameter order is fixed:
// q, category_id, then page and per_page on paginated routes.
func (r Route) TargetURL(req search.Request) string {
	var b strings.Builder
	b.WriteString(r.BaseURL)
	b.WriteString(r.Path)
	b.WriteString("?q=")
	b.WriteString(Escape(req.Query))
	b.WriteString("&category_id=")
	b.WriteString(Escape(req.Category))
	if r.Paginate {
		b.WriteString("&page=")
		b.WriteString(strconv.Itoa(req.Page))
		b.WriteString("&per_page=")
		b.WriteString(strconv.Itoa(req.PerPage))
	}
	return b.String()
}

// Escape percent-encodes s for a query component, spaces as %20.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func positiveOr(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return d
	}
	return v
}
