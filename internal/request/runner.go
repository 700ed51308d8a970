package request

import (
	"context"
	"errors"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrSuperseded is returned by Runner.Run when a newer call replaced the one
// in flight.
var ErrSuperseded = errors.New("request superseded by a newer one")

// Runner keeps at most one request in flight. Starting a new one cancels the
// previous call, and the previous caller gets ErrSuperseded instead of a
// stale result.
type Runner struct {
	executor *Executor
	logger   log.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewRunner(executor *Executor, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Runner{executor: executor, logger: logger}
}

func (r *Runner) Run(ctx context.Context, req *Request) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	id := r.seq
	r.cancel = cancel
	r.mu.Unlock()

	res := r.executor.Execute(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq != id {
		level.Debug(r.logger).Log("msg", "discarding superseded response", "method", req.Method, "url", req.URL)
		return nil, ErrSuperseded
	}
	r.cancel = nil
	return res, nil
}
