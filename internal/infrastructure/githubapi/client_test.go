package githubapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
	"github.com/paveldruzyak/commodus/internal/domain/scm"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{Token: "secret-token", BaseURL: srv.URL + "/", Timeout: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestGetPullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/hello/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"number":7,"state":"open","user":{"login":"alice"},"head":{"sha":"abc123"}}`))
	})
	c := newTestClient(t, mux)

	pr, err := c.GetPullRequest(context.Background(), "octo/hello", 7)
	require.NoError(t, err)
	assert.Equal(t, &scm.PullRequest{
		Repo:    "octo/hello",
		Number:  7,
		HeadSHA: "abc123",
		Creator: "alice",
		State:   "open",
	}, pr)
}

func TestGetPullRequestNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/hello/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	c := newTestClient(t, mux)

	_, err := c.GetPullRequest(context.Background(), "octo/hello", 7)
	assert.ErrorIs(t, err, scm.ErrPlatformAPI)
}

func TestSetStatus(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/hello/statuses/abc123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"state":"success"}`))
	})
	c := newTestClient(t, mux)

	err := c.SetStatus(context.Background(), "octo/hello", "abc123", approval.StatusSuccess,
		"Code review complete, got 2 +1s", approval.StatusContext)
	require.NoError(t, err)
	assert.Equal(t, "success", got["state"])
	assert.Equal(t, "Code review complete, got 2 +1s", got["description"])
	assert.Equal(t, "code review", got["context"])
}

func TestSetStatusServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/hello/statuses/abc123", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	err := c.SetStatus(context.Background(), "octo/hello", "abc123", approval.StatusPending, "x", approval.StatusContext)
	assert.ErrorIs(t, err, scm.ErrPlatformAPI)
}

func TestSplitRepo(t *testing.T) {
	owner, name, err := splitRepo("octo/hello")
	require.NoError(t, err)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "hello", name)

	for _, bad := range []string{"", "octo", "octo/", "/hello", "a/b/c"} {
		_, _, err := splitRepo(bad)
		assert.ErrorIs(t, err, scm.ErrPlatformAPI, bad)
	}
}
