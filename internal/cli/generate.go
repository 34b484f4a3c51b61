package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/mind-engage/mindengage-quizgen/internal/config"
	"github.com/mind-engage/mindengage-quizgen/internal/generate"
	"github.com/mind-engage/mindengage-quizgen/internal/llm"
	"github.com/mind-engage/mindengage-quizgen/internal/pdftext"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

// newGenerator is replaced in tests.
var newGenerator = llm.New

// runGenerate builds the handler for the generate command.
func runGenerate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		pdfPath := flags.String("pdf", "", "PDF document to generate from")
		textPath := flags.String("text", "", "plain text file to generate from")
		count := flags.Int("n", 0, "number of questions")
		total := flags.Float64("total-marks", 0, "total marks split evenly across questions")
		out := flags.String("o", "", "output CSV (default stdout)")
		cfgPath := flags.String("config", "", "YAML config file")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}
		if (*pdfPath == "") == (*textPath == "") || *count < 1 {
			fmt.Fprintln(stderr, "exactly one of --pdf or --text and a positive -n are required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(stderr, "config: %v\n", err)
			return ExitError
		}
		chunks, err := readChunks(*pdfPath, *textPath, cfg.Quiz)
		if err != nil {
			fmt.Fprintf(stderr, "read source: %v\n", err)
			return ExitError
		}
		gen, err := newGenerator(cfg.LLM)
		if err != nil {
			fmt.Fprintf(stderr, "generator: %v\n", err)
			return ExitError
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		opts := generate.Options{SimpleRatio: cfg.Quiz.SimpleRatio, Logger: log.New(stderr, "", log.LstdFlags)}
		if cfg.Quiz.Shuffle {
			opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
		}
		res, err := generate.NewPipeline(gen, opts).Run(ctx, chunks, *count)
		if err != nil {
			fmt.Fprintf(stderr, "generate: %v\n", err)
			return ExitError
		}

		points := cfg.Quiz.Defaults.PointsPerQuestion
		if *total > 0 {
			points = quiz.PointsPerQuestion(*total, *count)
		}
		if err := writeTo(*out, stdout, func(w io.Writer) error {
			return quiz.WriteCSV(w, quiz.FromQuestions(res.Questions, points))
		}); err != nil {
			fmt.Fprintf(stderr, "write: %v\n", err)
			return ExitError
		}
		if res.Short() {
			fmt.Fprintf(stderr, "warning: generated %d of %d requested questions\n", len(res.Questions), res.Requested)
		}
		return ExitOK
	}
}

func readChunks(pdfPath, textPath string, qc config.Quiz) ([]string, error) {
	if pdfPath != "" {
		pages, err := pdftext.FromFile(pdfPath)
		if err != nil {
			return nil, err
		}
		return pdftext.Chunk(pages, qc.PagesPerChunk), nil
	}
	b, err := os.ReadFile(textPath)
	if err != nil {
		return nil, err
	}
	return pdftext.SplitText(string(b), qc.ChunkRunes), nil
}

// writeTo writes to path, or to fallback when path is empty or "-".
func writeTo(path string, fallback io.Writer, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(fallback)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
