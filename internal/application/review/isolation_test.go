package review

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
	"github.com/paveldruzyak/commodus/internal/domain/scm"
	"github.com/paveldruzyak/commodus/internal/domain/vote"
	"github.com/paveldruzyak/commodus/internal/infrastructure/bolt"
)

type staticPulls struct{}

func (staticPulls) GetPullRequest(_ context.Context, repo string, number int) (*scm.PullRequest, error) {
	return &scm.PullRequest{Repo: repo, Number: number, HeadSHA: headSHA, Creator: "alice"}, nil
}

// gatedReporter blocks status calls for one repository until released.
type gatedReporter struct {
	repo    string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedReporter) SetStatus(ctx context.Context, repo, _ string, _ approval.Status, _, _ string) error {
	if repo != g.repo {
		return nil
	}
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestService_SlowStatusDoesNotBlockOtherPullRequests(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "commodus.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	slow := approval.Key{Repo: "octo/slow", Number: 1}
	require.NoError(t, store.Put(context.Background(), slow, headSHA, approval.NewRecord("alice")))

	reporter := &gatedReporter{repo: slow.Repo, entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(store, staticPulls{}, reporter, vote.DefaultParser(), nil, Options{}, zerolog.Nop())

	voted := make(chan error, 1)
	go func() {
		_, err := svc.OnIssueCommentCreated(context.Background(), Comment{
			Repo: slow.Repo, Number: slow.Number, Commenter: "bob", Body: ":+1:",
		}, 0)
		voted <- err
	}()
	<-reporter.entered

	opened := make(chan error, 1)
	go func() {
		_, err := svc.OnPullRequestOpened(context.Background(), &scm.PullRequest{
			Repo: "octo/other", Number: 9, HeadSHA: headSHA, Creator: "carol",
		}, 0)
		opened <- err
	}()

	select {
	case err := <-opened:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(reporter.release)
		t.Fatal("opening an unrelated pull request waited on another pull request's status call")
	}

	close(reporter.release)
	require.NoError(t, <-voted)

	rec, err := store.Get(context.Background(), slow, headSHA)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.PlusOneCount)
	assert.Equal(t, []string{"bob"}, rec.Voters)
}
