package request

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kolah/truffle/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRunnerSupersedes(t *testing.T) {
	started := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			started <- struct{}{}
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	runner := NewRunner(NewExecutor(srv.Client()), nil)

	type outcome struct {
		res *Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := runner.Run(context.Background(), &Request{Method: model.MethodGet, URL: srv.URL + "/slow"})
		first <- outcome{res, err}
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("slow request never reached the server")
	}

	res, err := runner.Run(context.Background(), &Request{Method: model.MethodGet, URL: srv.URL + "/fast"})
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)
	require.True(t, res.IsJSON())

	select {
	case got := <-first:
		require.ErrorIs(t, got.err, ErrSuperseded)
		require.Nil(t, got.res)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded request did not return")
	}
}

func TestRunnerSequential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	runner := NewRunner(NewExecutor(srv.Client()), nil)
	for range 3 {
		res, err := runner.Run(context.Background(), &Request{Method: model.MethodGet, URL: srv.URL})
		require.NoError(t, err)
		require.Equal(t, http.StatusTeapot, res.StatusCode)
	}
}
