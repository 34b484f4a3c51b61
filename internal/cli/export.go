package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mind-engage/mindengage-quizgen/internal/config"
	"github.com/mind-engage/mindengage-quizgen/internal/ident"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/export"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

// ids is replaced in tests for stable output.
var ids ident.Generator = ident.UUID{}

// runExport builds the handler for the export command.
func runExport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		in := flags.String("in", "", "CSV table to encode")
		out := flags.String("o", "quiz.zip", "output package")
		title := flags.String("title", "", "quiz title")
		identFlag := flags.String("ident", "", "assessment identifier")
		attempts := flags.Int("attempts", 0, "attempts allowed")
		points := flags.Float64("points", 0, "points per question for rows without points")
		cfgPath := flags.String("config", "", "YAML config file")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}
		if *in == "" {
			fmt.Fprintln(stderr, "--in is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(stderr, "config: %v\n", err)
			return ExitError
		}
		s := cfg.Quiz.Defaults
		if *title != "" {
			s.Title = *title
		}
		if *identFlag != "" {
			s.Ident = *identFlag
		}
		if *attempts != 0 {
			s.AttemptsAllowed = *attempts
		}
		if *points != 0 {
			s.PointsPerQuestion = *points
		}

		f, err := os.Open(*in)
		if err != nil {
			fmt.Fprintf(stderr, "open: %v\n", err)
			return ExitError
		}
		rows, err := quiz.ReadCSV(f)
		_ = f.Close()
		if err != nil {
			fmt.Fprintf(stderr, "read %s: %v\n", *in, err)
			return ExitError
		}
		qs, issues := quiz.RowsToQuestions(rows)
		for _, is := range issues {
			fmt.Fprintln(stderr, is)
		}
		if len(qs) == 0 {
			fmt.Fprintln(stderr, "no questions to export")
			return ExitError
		}

		pkg, err := export.Export(qs, s, ids)
		if err != nil {
			fmt.Fprintf(stderr, "export: %v\n", err)
			return ExitError
		}
		if err := writeTo(*out, stdout, func(w io.Writer) error {
			_, err := w.Write(pkg)
			return err
		}); err != nil {
			fmt.Fprintf(stderr, "write: %v\n", err)
			return ExitError
		}
		if *out != "" && *out != "-" {
			fmt.Fprintf(stdout, "Wrote %d questions to %s\n", len(qs), *out)
		}
		return ExitOK
	}
}
