package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mind-engage/mindengage-quizgen/internal/grading"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/parser"
)

// runCheck builds the handler for the check command.
func runCheck(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		list := flags.Bool("list", false, "print the archive entries")
		if code, ok := parseFlags(cmd, flags, args, 1, stdout, stderr); !ok {
			return code
		}
		if flags.NArg() != 1 {
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		b, err := os.ReadFile(flags.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Check failed:\n%v\n", err)
			return ExitError
		}
		doc, err := parser.ReadPackage(b)
		if err != nil {
			fmt.Fprintf(stderr, "Check failed:\n%v\n", err)
			return ExitError
		}
		if problems := grading.CheckDocument(doc); len(problems) > 0 {
			fmt.Fprintln(stderr, "Check failed:")
			for _, p := range problems {
				fmt.Fprintf(stderr, "  %s\n", p)
			}
			return ExitError
		}
		fmt.Fprintf(stdout, "Package OK: %d items, %d attempts\n", len(doc.Items), doc.MaxAttempts())
		if *list {
			names, err := parser.Entries(b)
			if err != nil {
				fmt.Fprintf(stderr, "Check failed:\n%v\n", err)
				return ExitError
			}
			for _, n := range names {
				fmt.Fprintf(stdout, "  %s\n", n)
			}
		}
		return ExitOK
	}
}
