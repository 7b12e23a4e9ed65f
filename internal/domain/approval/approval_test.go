package approval

import "testing"

func TestRecordApplyIgnoresCreator(t *testing.T) {
	r := NewRecord("alice")
	if r.Apply("alice", 1) {
		t.Fatal("creator vote must not count")
	}
	if r.PlusOneCount != 0 || len(r.Voters) != 0 {
		t.Fatalf("record changed: %+v", r)
	}
}

func TestRecordApplyOncePerVoter(t *testing.T) {
	r := NewRecord("alice")
	if !r.Apply("bob", 1) {
		t.Fatal("expected first vote to count")
	}
	if r.Apply("bob", 1) {
		t.Fatal("second vote from same user must not count")
	}
	if r.Apply("bob", -1) {
		t.Fatal("re-vote from same user must not count")
	}
	if r.PlusOneCount != 1 {
		t.Fatalf("expected count 1, got %d", r.PlusOneCount)
	}
}

func TestRecordApplyClampsAtZero(t *testing.T) {
	r := NewRecord("alice")
	r.Apply("bob", -1)
	r.Apply("carol", -1)
	if r.PlusOneCount != 0 {
		t.Fatalf("expected clamp to 0, got %d", r.PlusOneCount)
	}
	if !r.HasVoted("bob") || !r.HasVoted("carol") {
		t.Fatalf("negative voters must be recorded: %v", r.Voters)
	}
}

func TestRecordApplyZeroDelta(t *testing.T) {
	r := NewRecord("alice")
	if r.Apply("bob", 0) {
		t.Fatal("zero delta must not count")
	}
	if r.HasVoted("bob") {
		t.Fatal("neutral comment must not register a voter")
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := NewRecord("alice")
	r.Apply("bob", 1)
	c := r.Clone()
	c.Voters[0] = "mallory"
	if r.Voters[0] != "bob" {
		t.Fatal("clone shares voters slice")
	}
}

func TestEffectiveThreshold(t *testing.T) {
	cases := []struct {
		override, def, want int
	}{
		{0, 2, 2},
		{-3, 2, 2},
		{5, 2, 5},
		{0, 0, DefaultRequiredPlusOnes},
		{1, 0, 1},
	}
	for _, c := range cases {
		if got := EffectiveThreshold(c.override, c.def); got != c.want {
			t.Fatalf("EffectiveThreshold(%d, %d) = %d, want %d", c.override, c.def, got, c.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	st, msg := Describe(0, 2, false)
	if st != StatusPending || msg != "Required plus ones (0/2) has yet to be reached." {
		t.Fatalf("unexpected pending: %s %q", st, msg)
	}
	st, msg = Describe(3, 2, true)
	if st != StatusSuccess || msg != "Required plus ones (3/2) has been reached!" {
		t.Fatalf("unexpected success: %s %q", st, msg)
	}
}

func TestKeyString(t *testing.T) {
	if got := (Key{Repo: "octo/hello", Number: 7}).String(); got != "octo/hello#7" {
		t.Fatalf("unexpected key string %q", got)
	}
}
