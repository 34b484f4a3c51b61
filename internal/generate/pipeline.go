package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/mind-engage/mindengage-quizgen/internal/llm"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

// ErrNoText is returned when every chunk handed to the pipeline is blank.
var ErrNoText = errors.New("no source text")

type Options struct {
	SimpleRatio float64    // share of simple questions, default 0.2
	Rand        *rand.Rand // shuffles the final selection when set
	Logger      *log.Logger
}

// Pipeline drives generation chunk by chunk until enough distinct valid
// questions are accumulated or the chunks run out.
type Pipeline struct {
	gen  llm.Generator
	opts Options
}

func NewPipeline(gen llm.Generator, opts Options) *Pipeline {
	if opts.SimpleRatio <= 0 || opts.SimpleRatio > 1 {
		opts.SimpleRatio = 0.2
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Pipeline{gen: gen, opts: opts}
}

type Result struct {
	Questions []quiz.Question
	Requested int
	Chunks    int // chunks actually sent to the generator
}

// Short reports whether fewer questions than requested were produced.
func (r Result) Short() bool { return len(r.Questions) < r.Requested }

// Accumulator is the append-only store of parsed candidates across chunks.
type Accumulator struct {
	cands []Candidate
}

func (a *Accumulator) Add(qs []quiz.Question, tier string) {
	a.cands = append(a.cands, Tagged(qs, tier)...)
}

func (a *Accumulator) Candidates() []Candidate { return a.cands }

// tierCount counts the distinct questions currently selectable for a tier.
func tierCount(sel []quiz.Question, tier string) int {
	n := 0
	for _, q := range sel {
		if q.Tier == tier {
			n++
		}
	}
	return n
}

// Run generates target questions from chunks. A generator failure on one
// chunk is logged and the next chunk is tried; the error is returned only
// when nothing at all was produced. Running out of chunks is not an error:
// the result is simply Short.
func (p *Pipeline) Run(ctx context.Context, chunks []string, target int) (Result, error) {
	res := Result{Requested: target}
	if target <= 0 {
		return res, nil
	}
	quotas := SplitTiers(target, p.opts.SimpleRatio)

	var (
		acc      Accumulator
		sel      []quiz.Question
		lastErr  error
		nonBlank int
	)
	for i, chunk := range chunks {
		if len(sel) >= target {
			break
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		nonBlank++
		res.Chunks++
		for _, tq := range quotas {
			need := tq.Count - tierCount(sel, tq.Tier)
			if need <= 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return res, err
			}
			raw, err := p.gen.Generate(ctx, BuildPrompt(chunk, tq.Tier, need))
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				lastErr = fmt.Errorf("chunk %d (%s): %w", i+1, tq.Tier, err)
				p.opts.Logger.Printf("generate: %v", lastErr)
				continue
			}
			// keep over-delivery; selection caps each tier and extras replace duplicates
			parsed := ParseResponse(raw, 0)
			acc.Add(parsed, tq.Tier)
			p.opts.Logger.Printf("generate: chunk %d %s requested=%d parsed=%d", i+1, tq.Tier, need, len(parsed))
		}
		sel = SelectStratified(acc.Candidates(), quotas, nil)
		p.opts.Logger.Printf("generate: chunk %d accepted=%d/%d", i+1, len(sel), target)
	}

	if nonBlank == 0 {
		return res, ErrNoText
	}
	if len(sel) == 0 && lastErr != nil {
		return res, lastErr
	}
	if p.opts.Rand != nil {
		p.opts.Rand.Shuffle(len(sel), func(i, j int) { sel[i], sel[j] = sel[j], sel[i] })
	}
	res.Questions = sel
	if res.Short() {
		p.opts.Logger.Printf("generate: produced %d of %d requested questions", len(sel), target)
	}
	return res, nil
}
