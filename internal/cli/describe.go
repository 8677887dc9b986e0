package cli

import (
	"github.com/spf13/cobra"
)

// DescribeResult is the JSON payload of the describe command.
type DescribeResult struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <expr>",
		Short: "Describe an expression in natural language",
		Long: `Render an expression as a sentence in the configured locale.

Example:
  fql describe query.json
  fql describe query.json --locale es --style html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(newSession(rootOpts, cmd), args[0])
		},
	}

	return cmd
}

func runDescribe(s *session, arg string) error {
	q, err := s.query(arg)
	if err != nil {
		return err
	}
	opts, err := s.renderer()
	if err != nil {
		return err
	}

	text, err := q.Describe(opts...)
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to describe expression", err)
	}
	return s.out.Success(DescribeResult{Text: text, Locale: s.Config.Locale}, text)
}
