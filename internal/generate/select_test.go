package generate

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

func q(text string) quiz.Question {
	return quiz.Question{Text: text, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "1"}
}

func texts(qs []quiz.Question) []string {
	out := make([]string, 0, len(qs))
	for _, x := range qs {
		out = append(out, x.Text)
	}
	return out
}

func TestSelectKeepsFirstOccurrence(t *testing.T) {
	first := q("Same")
	first.CorrectAnswer = "2"
	cands := []Candidate{
		{Question: first, Tier: TierSimple},
		{Question: q("Other")},
		{Question: q("  Same  "), Tier: TierComplex},
		{Question: q("Third")},
	}
	got := Select(cands, 10)
	assert.Equal(t, []string{"Same", "Other", "Third"}, texts(got))
	assert.Equal(t, "2", got[0].CorrectAnswer)
}

func TestSelectTarget(t *testing.T) {
	cands := Tagged([]quiz.Question{q("a"), q("b"), q("a"), q("c"), q("d")}, "")
	assert.Equal(t, []string{"a", "b"}, texts(Select(cands, 2)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, texts(Select(cands, 0)))
	// fewer candidates than requested is not an error
	assert.Len(t, Select(cands, 50), 4)
}

func TestSelectIdempotent(t *testing.T) {
	cands := Tagged([]quiz.Question{q("x"), q("y"), q("x"), q("z"), q("y")}, "")
	for _, target := range []int{1, 2, 3, 10} {
		once := Select(cands, target)
		for _, again := range []int{target, target + 5} {
			twice := Select(Tagged(once, ""), again)
			assert.Equal(t, once, twice, "target %d -> %d", target, again)
		}
	}
}

func TestSplitTiers(t *testing.T) {
	assert.Equal(t, []TierQuota{{TierSimple, 1}, {TierComplex, 4}}, SplitTiers(5, 0.2))
	assert.Equal(t, []TierQuota{{TierSimple, 2}, {TierComplex, 8}}, SplitTiers(10, 0.2))
	assert.Equal(t, []TierQuota{{TierSimple, 1}, {TierComplex, 0}}, SplitTiers(1, 0.2))
	assert.Equal(t, []TierQuota{{TierSimple, 3}, {TierComplex, 0}}, SplitTiers(3, 1.5))
	assert.Nil(t, SplitTiers(0, 0.2))
}

func TestSelectStratified(t *testing.T) {
	cands := []Candidate{
		{Question: q("s1"), Tier: TierSimple},
		{Question: q("c1"), Tier: TierComplex},
		{Question: q("s2"), Tier: TierSimple},
		{Question: q("s1"), Tier: TierComplex}, // duplicate across tiers
		{Question: q("c2"), Tier: TierComplex},
		{Question: q("c3"), Tier: TierComplex},
	}
	got := SelectStratified(cands, []TierQuota{{TierSimple, 1}, {TierComplex, 3}}, nil)
	assert.Equal(t, []string{"s1", "c1", "c2", "c3"}, texts(got))
	assert.Equal(t, TierSimple, got[0].Tier)
	assert.Equal(t, TierComplex, got[1].Tier)
}

func TestSelectStratifiedShuffleKeepsSet(t *testing.T) {
	var cands []Candidate
	for _, s := range []string{"a", "b", "c", "d", "e", "f"} {
		cands = append(cands, Candidate{Question: q(s), Tier: TierComplex})
	}
	quotas := []TierQuota{{TierComplex, 6}}
	plain := SelectStratified(cands, quotas, nil)
	shuffled := SelectStratified(cands, quotas, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, shuffled, 6)
	assert.ElementsMatch(t, texts(plain), texts(shuffled))
}
