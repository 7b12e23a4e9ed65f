package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
	"github.com/paveldruzyak/commodus/internal/domain/event"
	"github.com/paveldruzyak/commodus/internal/domain/scm"
	"github.com/paveldruzyak/commodus/internal/domain/vote"
)

// SyncPolicy controls what happens to older commit tallies when a pull
// request receives a new head commit.
type SyncPolicy string

const (
	// SyncRetain keeps older commit entries until the pull request closes.
	SyncRetain SyncPolicy = "retain"
	// SyncPrune drops every entry except the new head commit.
	SyncPrune SyncPolicy = "prune"
)

// ParseSyncPolicy accepts "retain" and "prune"; empty means retain.
func ParseSyncPolicy(v string) (SyncPolicy, error) {
	switch SyncPolicy(v) {
	case "", SyncRetain:
		return SyncRetain, nil
	case SyncPrune:
		return SyncPrune, nil
	}
	return "", fmt.Errorf("unknown sync policy %q", v)
}

// Outcome summarises what an event did.
type Outcome string

const (
	OutcomeIgnored   Outcome = "ignored"
	OutcomePong      Outcome = "pong"
	OutcomeTracked   Outcome = "tracked"
	OutcomeCleared   Outcome = "cleared"
	OutcomeUntracked Outcome = "untracked"
	OutcomeNoVote    Outcome = "no_vote"
	OutcomeVoted     Outcome = "voted"
)

// Options configures the review service.
type Options struct {
	DefaultRequiredPlusOnes int
	SyncPolicy              SyncPolicy
}

// Comment is a newly created comment on a pull request.
type Comment struct {
	Repo      string
	Number    int
	Commenter string
	Body      string
}

func (c Comment) Key() approval.Key {
	return approval.Key{Repo: c.Repo, Number: c.Number}
}

// Service folds pull request and comment events into approval records and
// reports the resulting commit status.
type Service struct {
	repo     approval.Repository
	pulls    scm.PullRequestReader
	reporter scm.StatusReporter
	parser   vote.Parser
	policy   *Policy
	opts     Options
	locks    *keyLock
	logger   zerolog.Logger
}

// NewService creates a review service. A nil policy falls back to DefaultPolicy.
func NewService(
	repo approval.Repository,
	pulls scm.PullRequestReader,
	reporter scm.StatusReporter,
	parser vote.Parser,
	policy *Policy,
	opts Options,
	logger zerolog.Logger,
) *Service {
	if policy == nil {
		policy, _ = NewPolicy(DefaultPolicy)
	}
	if opts.DefaultRequiredPlusOnes <= 0 {
		opts.DefaultRequiredPlusOnes = approval.DefaultRequiredPlusOnes
	}
	if opts.SyncPolicy == "" {
		opts.SyncPolicy = SyncRetain
	}
	return &Service{
		repo:     repo,
		pulls:    pulls,
		reporter: reporter,
		parser:   parser,
		policy:   policy,
		opts:     opts,
		locks:    newKeyLock(),
		logger:   logger.With().Str("service", "review").Logger(),
	}
}

// Handle routes a decoded event to its handler.
func (s *Service) Handle(ctx context.Context, ev event.Event) (Outcome, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}
	switch ev.Kind {
	case event.KindPing:
		return OutcomePong, nil
	case event.KindPullRequestOpened, event.KindPullRequestSynchronize:
		pr := &scm.PullRequest{Repo: ev.Repo, Number: ev.Number, HeadSHA: ev.HeadSHA, Creator: ev.Creator}
		return s.OnPullRequestOpened(ctx, pr, ev.RequiredPlusOnes)
	case event.KindPullRequestClosed:
		return s.OnPullRequestClosed(ctx, ev.Key())
	case event.KindIssueCommentCreated:
		c := Comment{Repo: ev.Repo, Number: ev.Number, Commenter: ev.Commenter, Body: ev.Body}
		return s.OnIssueCommentCreated(ctx, c, ev.RequiredPlusOnes)
	case event.KindIgnored:
		return OutcomeIgnored, nil
	default:
		return OutcomeIgnored, nil
	}
}

// Threshold returns the threshold in effect for an event override.
func (s *Service) Threshold(override int) int {
	return approval.EffectiveThreshold(override, s.opts.DefaultRequiredPlusOnes)
}

// OnPullRequestOpened starts a fresh tally for the head commit. It serves
// both the opened and synchronize actions.
func (s *Service) OnPullRequestOpened(ctx context.Context, pr *scm.PullRequest, override int) (Outcome, error) {
	key := pr.Key()
	defer s.locks.Lock(key.String())()

	threshold := s.Threshold(override)
	rec := approval.NewRecord(pr.Creator)
	if err := s.repo.Put(ctx, key, pr.HeadSHA, rec); err != nil {
		return "", err
	}
	if s.opts.SyncPolicy == SyncPrune {
		if err := s.repo.Prune(ctx, key, pr.HeadSHA); err != nil {
			return "", err
		}
	}
	if err := s.report(ctx, pr.Repo, pr.HeadSHA, rec, threshold); err != nil {
		return "", err
	}
	s.logger.Info().
		Str("pr", key.String()).
		Str("commit", pr.HeadSHA).
		Str("creator", pr.Creator).
		Int("required_plus_ones", threshold).
		Msg("tracking pull request")
	return OutcomeTracked, nil
}

// OnPullRequestClosed forgets every commit tally of the pull request.
func (s *Service) OnPullRequestClosed(ctx context.Context, key approval.Key) (Outcome, error) {
	defer s.locks.Lock(key.String())()

	if err := s.repo.DeleteAll(ctx, key); err != nil {
		return "", err
	}
	s.logger.Info().Str("pr", key.String()).Msg("pull request closed, approvals cleared")
	return OutcomeCleared, nil
}

// OnIssueCommentCreated counts the comment as a vote on the pull request's
// current head commit. The status is reported before the vote is written, so
// a failed report leaves the stored tally untouched and the event can be
// redelivered. No store transaction is held across the platform call; the
// per pull request lock keeps the read and the write consistent.
func (s *Service) OnIssueCommentCreated(ctx context.Context, c Comment, override int) (Outcome, error) {
	key := c.Key()
	defer s.locks.Lock(key.String())()

	pr, err := s.pulls.GetPullRequest(ctx, c.Repo, c.Number)
	if err != nil {
		return "", err
	}
	if pr == nil || pr.HeadSHA == "" {
		return "", fmt.Errorf("%w: pull request %s has no head commit", scm.ErrPlatformAPI, key)
	}

	current, err := s.repo.Get(ctx, key, pr.HeadSHA)
	if err != nil {
		return "", err
	}
	if current == nil {
		s.logger.Debug().Str("pr", key.String()).Str("commit", pr.HeadSHA).Msg("comment on untracked commit")
		return OutcomeUntracked, nil
	}
	if !current.CanVote(c.Commenter) {
		return OutcomeNoVote, nil
	}
	delta := s.parser.Parse(c.Body)
	next := current.Clone()
	if !next.Apply(c.Commenter, int(delta)) {
		return OutcomeNoVote, nil
	}

	threshold := s.Threshold(override)
	if err := s.report(ctx, pr.Repo, pr.HeadSHA, next, threshold); err != nil {
		return "", err
	}

	// Re-apply against the stored record so a write from another process
	// between Get and Update is merged instead of overwritten.
	stored, err := s.repo.Update(ctx, key, pr.HeadSHA, func(latest *approval.Record) (*approval.Record, bool, error) {
		if latest == nil {
			return nil, false, nil
		}
		merged := latest.Clone()
		return merged, merged.Apply(c.Commenter, int(delta)), nil
	})
	if err != nil {
		return "", err
	}
	if stored == nil {
		s.logger.Warn().Str("pr", key.String()).Str("commit", pr.HeadSHA).Msg("record removed while the vote was reported")
		return OutcomeUntracked, nil
	}

	s.logger.Info().
		Str("pr", key.String()).
		Str("commit", pr.HeadSHA).
		Str("voter", c.Commenter).
		Int("delta", int(delta)).
		Int("plus_ones", stored.PlusOneCount).
		Int("required_plus_ones", threshold).
		Msg("vote recorded")
	return OutcomeVoted, nil
}

func (s *Service) report(ctx context.Context, repo, sha string, rec *approval.Record, threshold int) error {
	reached, err := s.policy.Reached(rec.PlusOneCount, threshold, len(rec.Voters))
	if err != nil {
		return fmt.Errorf("evaluate review policy: %w", err)
	}
	state, description := approval.Describe(rec.PlusOneCount, threshold, reached)
	if err := s.reporter.SetStatus(ctx, repo, sha, state, description, approval.StatusContext); err != nil {
		return err
	}
	return nil
}

// IsClientError reports whether err stems from a bad request rather than a
// failing dependency.
func IsClientError(err error) bool {
	return errors.Is(err, event.ErrMalformedPayload)
}
