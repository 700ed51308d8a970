// Package session owns one explorer session: it loads the document once,
// serves the derived endpoint views and runs live requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/kolah/truffle/internal/index"
	"github.com/kolah/truffle/internal/loader"
	"github.com/kolah/truffle/internal/logging"
	"github.com/kolah/truffle/internal/model"
	"github.com/kolah/truffle/internal/request"
)

var (
	// ErrNotReady is returned by accessors before a successful load.
	ErrNotReady = errors.New("spec is not loaded")
	// ErrEndpointNotFound is returned by Find for an unknown method and path.
	ErrEndpointNotFound = errors.New("endpoint not found")
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Options struct {
	// Source is a file path or http(s) URL.
	Source string
	// BaseURL overrides the first declared server when set.
	BaseURL           string
	Hidden            index.Hidden
	Credential        request.Credential
	Client            *http.Client
	ValidateResponses bool
	Logger            log.Logger
}

type Session struct {
	opts   Options
	logger log.Logger

	once   sync.Once
	mu     sync.RWMutex
	state  State
	err    error
	loaded *loader.Result
	runner *request.Runner
}

func New(opts Options) *Session {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Session{
		opts:   opts,
		logger: logging.Component(logger, "session"),
		state:  StateLoading,
	}
}

// Load fetches and parses the document. Only the first call does any work;
// later calls return the outcome of the first. A failed load is terminal.
func (s *Session) Load(ctx context.Context) error {
	s.once.Do(func() {
		s.load(ctx)
	})
	return s.Err()
}

func (s *Session) load(ctx context.Context) {
	res, err := loader.Load(ctx, s.opts.Source, s.opts.Client)
	if err != nil {
		level.Error(s.logger).Log("msg", "loading spec failed", "source", s.opts.Source, "err", err)
		s.mu.Lock()
		s.state, s.err = StateFailed, err
		s.mu.Unlock()
		return
	}
	for _, w := range res.Warnings {
		level.Warn(s.logger).Log("msg", w, "source", s.opts.Source)
	}

	execOpts := []request.ExecutorOption{request.WithLogger(s.logger)}
	if s.opts.ValidateResponses {
		conformance, err := request.NewConformance(res.Document)
		if err != nil {
			level.Warn(s.logger).Log("msg", "response validation disabled", "err", err)
		} else {
			execOpts = append(execOpts, request.WithConformance(conformance))
		}
	}
	runner := request.NewRunner(request.NewExecutor(s.opts.Client, execOpts...), s.logger)

	level.Info(s.logger).Log("msg", "loaded spec", "source", s.opts.Source, "title", res.Spec.Info.Title,
		"version", res.Version, "paths", len(res.Spec.Paths))

	s.mu.Lock()
	s.state, s.loaded, s.runner = StateReady, res, runner
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the load failure, ErrNotReady while loading, or nil once ready.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateReady:
		return nil
	case StateFailed:
		return s.err
	default:
		return ErrNotReady
	}
}

func (s *Session) ready() (*loader.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, ErrNotReady
	}
	return s.loaded, nil
}

func (s *Session) Spec() (*model.Spec, error) {
	res, err := s.ready()
	if err != nil {
		return nil, err
	}
	return res.Spec, nil
}

// Warnings returns the non-fatal findings of the load.
func (s *Session) Warnings() []string {
	res, err := s.ready()
	if err != nil {
		return nil
	}
	return res.Warnings
}

// Endpoints recomputes the visible endpoint list.
func (s *Session) Endpoints() ([]model.Endpoint, error) {
	spec, err := s.Spec()
	if err != nil {
		return nil, err
	}
	return index.Extract(spec, s.opts.Hidden), nil
}

// Groups recomputes the tag groups.
func (s *Session) Groups() ([]model.TagGroup, error) {
	spec, err := s.Spec()
	if err != nil {
		return nil, err
	}
	return index.GroupByTag(spec, s.opts.Hidden), nil
}

func (s *Session) Find(method, path string) (model.Endpoint, error) {
	endpoints, err := s.Endpoints()
	if err != nil {
		return model.Endpoint{}, err
	}
	ep, ok := index.Find(endpoints, method, path)
	if !ok {
		return model.Endpoint{}, fmt.Errorf("%w: %s %s", ErrEndpointNotFound, strings.ToUpper(method), path)
	}
	return ep, nil
}

// BaseURL is the configured override, else the first declared server.
func (s *Session) BaseURL() string {
	if s.opts.BaseURL != "" {
		return s.opts.BaseURL
	}
	spec, err := s.Spec()
	if err != nil {
		return ""
	}
	return spec.BaseURL()
}

func (s *Session) Build(ep model.Endpoint, in request.Input) (*request.Request, error) {
	spec, err := s.Spec()
	if err != nil {
		return nil, err
	}
	return request.Build(spec, ep, s.BaseURL(), in, s.opts.Credential), nil
}

// Run executes req, superseding any call still in flight.
func (s *Session) Run(ctx context.Context, req *request.Request) (*request.Result, error) {
	s.mu.RLock()
	runner, state := s.runner, s.state
	s.mu.RUnlock()
	if state != StateReady {
		return nil, ErrNotReady
	}
	return runner.Run(ctx, req)
}
