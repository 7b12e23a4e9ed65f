package approval

import (
	"errors"
	"fmt"
	"sort"
)

// Status represents the commit status reported to the platform.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
)

// StatusContext is the label the status is reported under.
const StatusContext = "code review"

// DefaultRequiredPlusOnes is used when an event carries no positive override.
const DefaultRequiredPlusOnes = 2

var ErrStoreUnavailable = errors.New("approval store unavailable")

// Key identifies a pull request within a repository.
type Key struct {
	Repo   string `json:"repo"`
	Number int    `json:"number"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Repo, k.Number)
}

// Record is the approval snapshot for one commit of a pull request.
type Record struct {
	PlusOneCount int      `json:"plus_one_count"`
	Voters       []string `json:"voters"`
	Creator      string   `json:"creator"`
}

// NewRecord returns an empty tally owned by creator.
func NewRecord(creator string) *Record {
	return &Record{Voters: []string{}, Creator: creator}
}

// HasVoted reports whether user already contributed a vote.
func (r *Record) HasVoted(user string) bool {
	for _, v := range r.Voters {
		if v == user {
			return true
		}
	}
	return false
}

// CanVote reports whether a comment from user may still change the tally.
func (r *Record) CanVote(user string) bool {
	return user != r.Creator && !r.HasVoted(user)
}

// Apply folds a vote delta from user into the record. It returns false and
// leaves the record untouched when the vote does not count.
func (r *Record) Apply(user string, delta int) bool {
	if delta == 0 || !r.CanVote(user) {
		return false
	}
	r.PlusOneCount += delta
	if r.PlusOneCount < 0 {
		r.PlusOneCount = 0
	}
	r.Voters = append(r.Voters, user)
	sort.Strings(r.Voters)
	return true
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Voters = append([]string{}, r.Voters...)
	return &out
}

// EffectiveThreshold returns override when positive, otherwise def.
func EffectiveThreshold(override, def int) int {
	if override > 0 {
		return override
	}
	if def > 0 {
		return def
	}
	return DefaultRequiredPlusOnes
}

// Describe renders the status and human readable message for a tally.
func Describe(count, threshold int, reached bool) (Status, string) {
	if reached {
		return StatusSuccess, fmt.Sprintf("Required plus ones (%d/%d) has been reached!", count, threshold)
	}
	return StatusPending, fmt.Sprintf("Required plus ones (%d/%d) has yet to be reached.", count, threshold)
}
