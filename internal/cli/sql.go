package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fql/internal/queryir"
	"github.com/roach88/fql/internal/querysql"
)

// SQLResult is the JSON payload of the sql command.
type SQLResult struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
	// Warnings lists constructs that behave differently across engines.
	Warnings []string `json:"warnings,omitempty"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	var vars []string

	cmd := &cobra.Command{
		Use:   "sql <model> <expr>",
		Short: "Compile an expression to SQL",
		Long: `Compile an expression against a model of the schema and print the SQL
for the configured dialect, with its bound arguments. Portability warnings
(regular expressions, LIKE case folding, long join chains) go to stderr.

Example:
  fql sql User query.json --var threshold=24000
  fql sql User query.json --dialect postgres --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(newSession(rootOpts, cmd), args[0], args[1], vars)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "bind a variable (name=value, repeatable)")

	return cmd
}

func runSQL(s *session, model, arg string, pairs []string) error {
	sch, err := s.schema()
	if err != nil {
		return err
	}
	q, err := s.query(arg)
	if err != nil {
		return err
	}
	vars, err := s.vars(pairs)
	if err != nil {
		return err
	}

	plan, err := q.Plan(sch, model, vars)
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to compile query", err)
	}
	sql, args, err := querysql.Render(*plan, s.Config.SQLDialect())
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to render query", err)
	}
	if args == nil {
		args = []any{}
	}

	portability := queryir.Validate(*plan)
	if !s.out.JSON() {
		for _, w := range portability.Warnings {
			fmt.Fprintln(s.out.GetErrWriter(), "warning:", w)
		}
	}
	result := SQLResult{SQL: sql, Args: args}
	if !portability.IsPortable {
		result.Warnings = portability.Warnings
	}
	return s.out.Success(result, querysql.Describe(sql, args))
}
