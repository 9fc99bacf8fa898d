// Command dpll is a CLI front end for the DPLL SAT solver: it reads a
// DIMACS CNF formula (from a file or standard input) and reports a
// satisfying assignment or that none exists.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lonnegan/dpll"
)

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, errUnsatisfiable) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "dpll [path]",
		Short: "A DPLL SAT solver for DIMACS CNF formulas",
		Long: `dpll reads a single problem specification in the DIMACS CNF format.

With no argument, it reads from standard input. With exactly one argument,
it opens that path as the input file.

On a satisfiable formula it prints "satisfied!" followed by the true,
false, and don't-care variable blocks, and exits 0. On an unsatisfiable
formula it prints "unsatisfied" and exits 1.`,
		// A custom Args validator (rather than SilenceUsage: false) so a
		// wrong-arity invocation prints a usage line (spec §6.2) without
		// cobra also printing one for every other kind of RunE failure
		// (parse errors, interruption, UNSAT) that isn't a usage problem.
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
				return errors.Errorf("accepts at most 1 arg(s), received %d", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args, verbose, debug, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log decision and propagation stats")
	cmd.Flags().BoolVar(&debug, "debug", false, "dump the solve result (assignments and counters) to stderr before exiting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd.SetContext(ctx)
	origRunE := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defer stop()
		return origRunE(cmd, args)
	}

	return cmd
}

func run(ctx context.Context, args []string, verbose, debug bool, stdout, stderr io.Writer) error {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrapf(err, "opening %q", args[0])
		}
		defer f.Close()
		r = f
	}

	level := hclog.Warn
	if verbose {
		level = hclog.Trace
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:            "dpll",
		Level:           level,
		Output:          stderr,
		IncludeLocation: false,
	})

	cnf, err := dpll.ParseDIMACS(r)
	if err != nil {
		return errors.Wrap(err, "reading DIMACS input")
	}

	// The search itself has no cancellation points (spec §5): it's a single
	// synchronous recursion with no I/O. Running it on its own goroutine
	// lets a SIGINT/SIGTERM delivered mid-search still produce the graceful,
	// non-zero exit spec §6.2 asks for, instead of relying on the process
	// being killed out from under an uncaught default signal disposition.
	resultCh := make(chan *dpll.Result, 1)
	go func() {
		solver := dpll.New(cnf, dpll.WithLogger(logger))
		resultCh <- solver.Solve()
	}()

	var result *dpll.Result
	select {
	case <-ctx.Done():
		return errors.New("interrupted")
	case result = <-resultCh:
	}

	logger.Info("solve complete",
		"satisfiable", result.Satisfiable,
		"decisions", result.Decisions,
		"propagations", result.Propagations,
	)
	if debug {
		fmt.Fprintf(stderr, "%# v\n", pretty.Formatter(result))
	}

	if !result.Satisfiable {
		fmt.Fprintln(stdout, "unsatisfied")
		return errUnsatisfiable
	}

	fmt.Fprintln(stdout, "satisfied!")
	printBlock(stdout, "true:", result.True)
	printBlock(stdout, "false:", result.False)
	printBlock(stdout, "don't care:", result.DontCare)
	return nil
}

// errUnsatisfiable signals a clean, non-error UNSAT exit (exit code 1
// without a diagnostic: UNSAT is a legitimate outcome, not an error,
// per spec §7).
var errUnsatisfiable = &exitError{}

type exitError struct{}

func (*exitError) Error() string { return "" }

func printBlock(w io.Writer, header string, vars []int) {
	if len(vars) == 0 {
		return
	}
	fmt.Fprintln(w, header)
	for _, v := range vars {
		fmt.Fprintf(w, "  %d\n", v)
	}
}
