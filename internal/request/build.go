// Package request turns an endpoint plus user-entered values into a concrete
// HTTP request, renders it as a shell command and executes it.
package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kolah/truffle/internal/model"
	"github.com/kolah/truffle/internal/resolver"
)

const ContentTypeJSON = "application/json"

// Input is what the user typed: parameter values keyed by name and the raw
// body text.
type Input struct {
	Values map[string]string
	Body   string
}

type Header struct {
	Name  string
	Value string
}

// Request is a fully built request. Headers keep insertion order so the shell
// rendering is stable.
type Request struct {
	Method  model.Method
	URL     string
	Path    string // path template with placeholders substituted
	Query   string // "" or "?a=1&b=2"
	Headers []Header
	Body    string
	HasBody bool
}

// Header returns the value of the named header, or "".
func (r *Request) Header(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Build assembles the request for ep against baseURL. Placeholders for path
// parameters without a value stay in the path. Query parameters without a
// value are omitted. Header and cookie parameters are documentation only.
func Build(spec *model.Spec, ep model.Endpoint, baseURL string, in Input, cred Credential) *Request {
	params := resolver.ResolveParameters(spec, ep.Operation)

	req := &Request{
		Method: ep.Method,
		Path:   buildPath(ep.Path, resolver.ParametersIn(params, model.LocationPath), in.Values),
		Query:  buildQuery(resolver.ParametersIn(params, model.LocationQuery), in.Values),
	}
	req.URL = strings.TrimSuffix(baseURL, "/") + req.Path + req.Query

	if ep.Method.AcceptsBody() && in.Body != "" {
		req.Body = in.Body
		req.HasBody = true
		req.Headers = append(req.Headers, Header{Name: "Content-Type", Value: ContentTypeJSON})
	}
	if h, ok := cred.header(); ok {
		req.Headers = append(req.Headers, h)
	}

	return req
}

func buildPath(template string, params []*model.Parameter, values map[string]string) string {
	path := template
	for _, p := range params {
		v := values[p.Name]
		if v == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(v))
	}
	return path
}

func buildQuery(params []*model.Parameter, values map[string]string) string {
	var parts []string
	emitted := make(map[string]bool)
	for _, p := range params {
		v := values[p.Name]
		if v == "" || emitted[p.Name] {
			continue
		}
		emitted[p.Name] = true
		parts = append(parts, p.Name+"="+encodeComponent(v))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// encodeComponent percent-encodes a query value, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// HTTPRequest converts r into a *http.Request bound to ctx.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.HasBody {
		body = strings.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, string(r.Method), r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for _, h := range r.Headers {
		req.Header.Set(h.Name, h.Value)
	}
	return req, nil
}
