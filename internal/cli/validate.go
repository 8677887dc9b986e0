package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fql/internal/validation"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model> <expr>",
		Short: "Check an expression against the schema",
		Long: `Check that every relation, attribute and call of an expression resolves
against the model. All problems are reported, not just the first.

Exit codes:
  0  expression is valid
  1  expression is invalid or does not decode
  2  command error (schema or file not found)

Example:
  fql validate User query.json --schema ./schema`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(newSession(rootOpts, cmd), args[0], args[1])
		},
	}

	return cmd
}

func runValidate(s *session, model, arg string) error {
	sch, err := s.schema()
	if err != nil {
		return err
	}
	q, err := s.query(arg)
	if err != nil {
		return err
	}

	result := q.Validate(sch, model)
	if result.Valid() {
		return s.out.Check(result, "expression is valid")
	}
	return outputValidationErrors(s.out, result)
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(out *OutputFormatter, result validation.Result) error {
	message := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))
	_ = out.Fail(ErrCodeInvalid, message, result, result.Errors)
	// Validation failures = exit code 1
	return reported(ExitFailure, ErrCodeInvalid+": "+message)
}
