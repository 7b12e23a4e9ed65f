package event

import (
	"errors"
	"fmt"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
)

var ErrMalformedPayload = errors.New("malformed payload")

// Kind is the closed set of inbound events the review service reacts to.
type Kind int

const (
	KindIgnored Kind = iota
	KindPing
	KindPullRequestOpened
	KindPullRequestSynchronize
	KindPullRequestClosed
	KindIssueCommentCreated
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindPullRequestOpened:
		return "pull_request.opened"
	case KindPullRequestSynchronize:
		return "pull_request.synchronize"
	case KindPullRequestClosed:
		return "pull_request.closed"
	case KindIssueCommentCreated:
		return "issue_comment.created"
	default:
		return "ignored"
	}
}

// Classify maps a platform event name and action onto a Kind.
func Classify(eventType, action string) Kind {
	switch eventType {
	case "ping":
		return KindPing
	case "pull_request":
		switch action {
		case "opened":
			return KindPullRequestOpened
		case "synchronize":
			return KindPullRequestSynchronize
		case "closed":
			return KindPullRequestClosed
		}
	case "issue_comment":
		if action == "created" {
			return KindIssueCommentCreated
		}
	}
	return KindIgnored
}

// Event is a decoded inbound webhook.
type Event struct {
	Kind       Kind
	DeliveryID string

	Repo   string
	Number int

	// Pull request events.
	HeadSHA string
	Creator string

	// Comment events.
	Commenter string
	Body      string

	// RequiredPlusOnes overrides the default threshold when positive.
	RequiredPlusOnes int
}

func (e Event) Key() approval.Key {
	return approval.Key{Repo: e.Repo, Number: e.Number}
}

// Validate checks the fields each kind relies on.
func (e Event) Validate() error {
	switch e.Kind {
	case KindIgnored, KindPing:
		return nil
	}
	if e.Repo == "" {
		return fmt.Errorf("%w: repository name is required", ErrMalformedPayload)
	}
	if e.Number <= 0 {
		return fmt.Errorf("%w: pull request number is required", ErrMalformedPayload)
	}
	switch e.Kind {
	case KindPullRequestOpened, KindPullRequestSynchronize:
		if e.HeadSHA == "" {
			return fmt.Errorf("%w: head commit is required", ErrMalformedPayload)
		}
		if e.Creator == "" {
			return fmt.Errorf("%w: pull request creator is required", ErrMalformedPayload)
		}
	case KindIssueCommentCreated:
		if e.Commenter == "" {
			return fmt.Errorf("%w: commenter is required", ErrMalformedPayload)
		}
	}
	return nil
}
