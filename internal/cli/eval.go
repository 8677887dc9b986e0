package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	Result    bool   `json:"result"`
	Predicate string `json:"predicate"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		vars    []string
		object  string
		require bool
	)

	cmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "Evaluate an expression against a JSON object",
		Long: `Compile an expression to an in-memory predicate and evaluate it against
a JSON object. Prints true or false. With --require a false result exits
with status 1.

Example:
  fql eval query.json --object person.json --var threshold=24000
  fql eval query.json --object '{"age": 30}' --require`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(newSession(rootOpts, cmd), args[0], object, vars, require)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "bind a variable (name=value, repeatable)")
	cmd.Flags().StringVar(&object, "object", "", "object to test: a file, - for stdin, or inline JSON (required)")
	cmd.Flags().BoolVar(&require, "require", false, "exit with status 1 when the result is false")
	_ = cmd.MarkFlagRequired("object")

	return cmd
}

func runEval(s *session, arg, objectArg string, pairs []string, require bool) error {
	q, err := s.query(arg)
	if err != nil {
		return err
	}
	vars, err := s.vars(pairs)
	if err != nil {
		return err
	}
	root, err := s.object(objectArg)
	if err != nil {
		return err
	}

	prg, err := q.Predicate()
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to compile predicate", err)
	}
	s.out.VerboseLog("predicate: %s", prg.Source())

	ok, err := prg.Eval(root, vars)
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to evaluate predicate", err)
	}

	result := EvalResult{Result: ok, Predicate: prg.Source()}
	if !ok && require {
		_ = s.out.Fail(ErrCodeUnsatisfied, "predicate is false", result, nil)
		return reported(ExitFailure, ErrCodeUnsatisfied+": predicate is false")
	}
	return s.out.Success(result, strconv.FormatBool(ok))
}
