package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/kolah/truffle/internal/model"
)

// Result is the outcome of one executed request. A transport failure sets Err
// and leaves StatusCode at zero, including a response whose body could not be
// read in full. HTTP error statuses are ordinary results.
type Result struct {
	StatusCode  int
	Status      string
	Header      http.Header
	ContentType string
	Body        []byte
	JSON        any // decoded body when the response is JSON
	Duration    time.Duration
	Violations  []Violation

	// RequestViolations are findings about the request as it was sent.
	RequestViolations []Violation
	Err               error
}

// OK reports a 2xx response.
func (r *Result) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the body was decoded as JSON.
func (r *Result) IsJSON() bool {
	return r.JSON != nil
}

// Text returns the raw body as a string.
func (r *Result) Text() string {
	return string(r.Body)
}

// Pretty returns the body indented when it is JSON, raw otherwise. Indenting
// the raw bytes keeps the server's key order.
func (r *Result) Pretty() string {
	if !r.IsJSON() {
		return r.Text()
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Body, "", "  "); err != nil {
		return r.Text()
	}
	return buf.String()
}

type Executor struct {
	client      *http.Client
	conformance *Conformance
	logger      log.Logger
}

type ExecutorOption func(*Executor)

// WithConformance checks every response against the documented schema.
func WithConformance(c *Conformance) ExecutorOption {
	return func(e *Executor) {
		e.conformance = c
	}
}

func WithLogger(logger log.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

func NewExecutor(client *http.Client, opts ...ExecutorOption) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Executor{
		client: client,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs req and classifies the outcome. It never returns a nil
// Result; transport failures are reported through Result.Err.
func (e *Executor) Execute(ctx context.Context, req *Request) *Result {
	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return &Result{Err: err}
	}

	var requestViolations []Violation
	if e.conformance != nil {
		if checkReq, err := req.HTTPRequest(ctx); err == nil {
			requestViolations = e.conformance.CheckRequest(checkReq)
		}
	}

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		res := &Result{Duration: time.Since(start), RequestViolations: requestViolations, Err: fmt.Errorf("sending request: %w", err)}
		level.Debug(e.logger).Log("msg", "request failed", "method", req.Method, "url", req.URL, "err", err)
		return res
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		level.Debug(e.logger).Log("msg", "reading response failed", "method", req.Method, "url", req.URL, "status", resp.StatusCode, "err", err)
		return &Result{
			Duration:          time.Since(start),
			RequestViolations: requestViolations,
			Err:               fmt.Errorf("reading %s response: %w", resp.Status, err),
		}
	}

	res := &Result{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Header:      resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Duration:    time.Since(start),

		RequestViolations: requestViolations,
	}

	if model.IsJSONMediaType(res.ContentType) && len(bytes.TrimSpace(body)) > 0 {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil && decoded != nil {
			res.JSON = decoded
		}
	}

	if e.conformance != nil {
		resp.Body = io.NopCloser(bytes.NewReader(body))
		res.Violations = e.conformance.Check(httpReq, resp)
	}

	level.Debug(e.logger).Log("msg", "request completed", "method", req.Method, "url", req.URL,
		"status", res.StatusCode, "duration", res.Duration, "violations", len(res.Violations))
	return res
}
