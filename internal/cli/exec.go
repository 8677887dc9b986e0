package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/fql/internal/store"
)

// ExecResult is the JSON payload of the exec and run commands.
type ExecResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"count"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		vars    []string
		orderBy string
	)

	cmd := &cobra.Command{
		Use:   "exec <model> <expr>",
		Short: "Run an expression against a database",
		Long: `Compile an expression and run it against the configured database.

With the sqlite dialect and no --database the store file is queried; other
dialects need --database and use the pgx or mysql driver unless --driver
names another.

Example:
  fql exec User query.json --store app.db --order-by id
  fql exec User query.json --dialect postgres --database postgres://localhost/app`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(newSession(rootOpts, cmd), args[0], args[1], vars, orderBy)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "bind a variable (name=value, repeatable)")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort by a column of the model's table")

	return cmd
}

func runExec(s *session, model, arg string, pairs []string, orderBy string) error {
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

	ex, err := s.executor()
	if err != nil {
		return err
	}
	defer ex.Close()

	rows, err := ex.Execute(s.ctx(), *plan, execOptions(orderBy)...)
	if err != nil {
		return s.out.fail(ExitCommandError, ErrCodeDatabase, "failed to execute query", err)
	}
	return printRows(s.out, rows)
}

func execOptions(orderBy string) []store.ExecOption {
	if orderBy == "" {
		return nil
	}
	return []store.ExecOption{store.OrderBy(orderBy)}
}

// printRows writes rows as an aligned table in text mode.
func printRows(out *OutputFormatter, rows *store.Rows) error {
	if out.JSON() {
		return out.Success(ExecResult{Columns: rows.Columns, Rows: rows.Maps(), Count: rows.Len()}, "")
	}

	tw := tabwriter.NewWriter(out.Writer, 0, 4, 2, ' ', 0)
	for i, col := range rows.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)
	for _, row := range rows.Values {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				v = "NULL"
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out.Writer, "(%d rows)\n", rows.Len())
	return nil
}
