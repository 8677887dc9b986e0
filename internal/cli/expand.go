package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/fql/internal/ir"
)

// ExpandResult is the JSON payload of the expand command.
type ExpandResult struct {
	Expression  json.RawMessage `json:"expression"`
	Fingerprint string          `json:"fingerprint"`
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <expr>",
		Short: "Expand library calls",
		Long: `Replace every call of the standard library (between, present, blank,
not_one_of, starts_with, ends_with) by its expansion and print the
resulting tree as canonical JSON.

Example:
  fql expand query.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(newSession(rootOpts, cmd), args[0])
		},
	}

	return cmd
}

func runExpand(s *session, arg string) error {
	q, err := s.query(arg)
	if err != nil {
		return err
	}
	expanded, err := q.Expand()
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to expand expression", err)
	}

	tree, err := expanded.Serialize()
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to serialize expression", err)
	}
	data, err := ir.MarshalCanonical(tree)
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to serialize expression", err)
	}
	fp, err := expanded.Fingerprint()
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to fingerprint expression", err)
	}
	return s.out.Success(ExpandResult{Expression: data, Fingerprint: fp}, string(data))
}
