package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/store"
)

// SavedQueryInfo is the JSON form of a saved query.
type SavedQueryInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Model       string    `json:"model"`
	Expression  string    `json:"expression"`
	Fingerprint string    `json:"fingerprint"`
	Seq         int64     `json:"seq"`
	CreatedAt   time.Time `json:"created_at"`
}

func savedQueryInfo(q store.SavedQuery) SavedQueryInfo {
	return SavedQueryInfo{
		ID:          q.ID,
		Name:        q.Name,
		Model:       q.Model,
		Expression:  expr.Format(q.Expr),
		Fingerprint: q.Fingerprint,
		Seq:         q.Seq,
		CreatedAt:   q.CreatedAt,
	}
}

// ListEntry is one row of the list command. Error is set for a row whose
// expression could not be read back.
type ListEntry struct {
	*SavedQueryInfo
	Error string `json:"error,omitempty"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "save <name> <model> <expr>",
		Short: "Save an expression under a name",
		Long: `Store an expression in the saved query catalog. Saving under an existing
name replaces its expression.

Example:
  fql save adults User adults.json --store app.db
  fql save adults User adults.json --validate --schema ./schema`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(newSession(rootOpts, cmd), args[0], args[1], args[2], validate)
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "validate against the schema before saving")

	return cmd
}

func runSave(s *session, name, model, arg string, validate bool) error {
	q, err := s.query(arg)
	if err != nil {
		return err
	}
	if validate {
		sch, err := s.schema()
		if err != nil {
			return err
		}
		if result := q.Validate(sch, model); !result.Valid() {
			return outputValidationErrors(s.out, result)
		}
	}

	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.SaveQuery(s.ctx(), name, model, q.Expr())
	if err != nil {
		return s.out.fail(ExitCommandError, ErrCodeDatabase, "failed to save query", err)
	}
	return s.out.Check(savedQueryInfo(saved), fmt.Sprintf("saved %s (%s)", saved.Name, saved.Fingerprint[:12]))
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var fingerprint string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved queries",
		Long: `List the saved query catalog in save order. Rows whose expression can no
longer be decoded are listed with their error.

Example:
  fql list --store app.db
  fql list --fingerprint 3f2a...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(newSession(rootOpts, cmd), fingerprint)
		},
	}
	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "only list queries with this fingerprint")

	return cmd
}

func runList(s *session, fingerprint string) error {
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if fingerprint != "" {
		names, err := st.QueriesByFingerprint(s.ctx(), fingerprint)
		if err != nil {
			return s.out.fail(ExitCommandError, ErrCodeDatabase, "failed to list queries", err)
		}
		return s.out.Success(names, strings.Join(names, "\n"))
	}

	outcomes, err := st.ListQueries(s.ctx())
	if err != nil {
		return s.out.fail(ExitCommandError, ErrCodeDatabase, "failed to list queries", err)
	}

	entries := make([]ListEntry, len(outcomes))
	for i, o := range outcomes {
		if o.IsError() {
			entries[i] = ListEntry{Error: o.Message()}
			continue
		}
		info := savedQueryInfo(o.Value())
		entries[i] = ListEntry{SavedQueryInfo: &info}
	}
	if s.out.JSON() {
		return s.out.Success(entries, "")
	}

	tw := tabwriter.NewWriter(s.out.Writer, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		if e.SavedQueryInfo == nil {
			fmt.Fprintf(tw, "%s\t\t%s\n", failMark("✗"), e.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Model, e.Expression)
	}
	return tw.Flush()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		vars    []string
		orderBy string
	)

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a saved query against the store",
		Long: `Load a saved query, compile it against the schema and run it against the
tables of the store database.

Example:
  fql run adults --store app.db --schema ./schema --var min=18`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaved(newSession(rootOpts, cmd), args[0], vars, orderBy)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "bind a variable (name=value, repeatable)")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort by a column of the model's table")

	return cmd
}

func runSaved(s *session, name string, pairs []string, orderBy string) error {
	sch, err := s.schema()
	if err != nil {
		return err
	}
	vars, err := s.vars(pairs)
	if err != nil {
		return err
	}
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.RunQuery(s.ctx(), name, sch, vars, s.lib, execOptions(orderBy)...)
	if errors.Is(err, store.ErrNotFound) {
		return s.out.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no saved query %q", name), err)
	}
	if err != nil {
		return s.out.fail(ExitFailure, ErrCodeCompile, "failed to run query", err)
	}
	return printRows(s.out, rows)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(newSession(rootOpts, cmd), args[0])
		},
	}

	return cmd
}

func runDelete(s *session, name string) error {
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	err = st.DeleteQuery(s.ctx(), name)
	if errors.Is(err, store.ErrNotFound) {
		return s.out.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no saved query %q", name), err)
	}
	if err != nil {
		return s.out.fail(ExitCommandError, ErrCodeDatabase, "failed to delete query", err)
	}
	return s.out.Check(map[string]string{"deleted": name}, "deleted "+name)
}
