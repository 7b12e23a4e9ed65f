package scm

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_scm.go -package=mocks . PullRequestReader,StatusReporter

import (
	"context"
	"errors"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
)

var ErrPlatformAPI = errors.New("platform api error")

// PullRequest is the platform's current view of a pull request.
type PullRequest struct {
	Repo    string
	Number  int
	HeadSHA string
	Creator string
	State   string
}

func (p *PullRequest) Key() approval.Key {
	return approval.Key{Repo: p.Repo, Number: p.Number}
}

// PullRequestReader fetches authoritative pull request state.
type PullRequestReader interface {
	GetPullRequest(ctx context.Context, repo string, number int) (*PullRequest, error)
}

// StatusReporter posts commit statuses.
type StatusReporter interface {
	SetStatus(ctx context.Context, repo, sha string, state approval.Status, description, statusContext string) error
}
