package generate

import (
	"math/rand/v2"
	"strings"

	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

const (
	TierSimple  = "simple"
	TierComplex = "complex"
)

// Candidate is a parsed question together with the tier it was requested for.
type Candidate struct {
	Question quiz.Question
	Tier     string
}

// TierQuota bounds how many questions a tier contributes.
type TierQuota struct {
	Tier  string
	Count int
}

// SplitTiers divides n questions into a simple and a complex quota. The
// simple share is floor(n*ratio) but never below one.
func SplitTiers(n int, simpleRatio float64) []TierQuota {
	if n <= 0 {
		return nil
	}
	simple := int(float64(n) * simpleRatio)
	if simple < 1 {
		simple = 1
	}
	if simple > n {
		simple = n
	}
	return []TierQuota{
		{Tier: TierSimple, Count: simple},
		{Tier: TierComplex, Count: n - simple},
	}
}

func dedupKey(q quiz.Question) string { return strings.TrimSpace(q.Text) }

// Select keeps the first occurrence of each distinct question text, in
// input order, until target questions are collected. target <= 0 keeps every
// distinct question.
func Select(cands []Candidate, target int) []quiz.Question {
	seen := map[string]struct{}{}
	out := make([]quiz.Question, 0, len(cands))
	for _, c := range cands {
		if target > 0 && len(out) >= target {
			break
		}
		k := dedupKey(c.Question)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c.Question)
	}
	return out
}

// SelectStratified fills each tier quota in order from the candidates tagged
// with that tier. A text already taken by any tier is never taken again.
// When rng is non-nil the final sequence is shuffled.
func SelectStratified(cands []Candidate, quotas []TierQuota, rng *rand.Rand) []quiz.Question {
	seen := map[string]struct{}{}
	var out []quiz.Question
	for _, tq := range quotas {
		taken := 0
		for _, c := range cands {
			if taken >= tq.Count {
				break
			}
			if c.Tier != tq.Tier {
				continue
			}
			k := dedupKey(c.Question)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			q := c.Question
			if q.Tier == "" {
				q.Tier = c.Tier
			}
			out = append(out, q)
			taken++
		}
	}
	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

// Tagged wraps questions as candidates of one tier.
func Tagged(qs []quiz.Question, tier string) []Candidate {
	out := make([]Candidate, 0, len(qs))
	for _, q := range qs {
		out = append(out, Candidate{Question: q, Tier: tier})
	}
	return out
}
