package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fql/internal/i18n"
	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/library"
	"github.com/roach88/fql/internal/query"
	"github.com/roach88/fql/internal/querysql"
	"github.com/roach88/fql/internal/schema"
	"github.com/roach88/fql/internal/store"
	"github.com/roach88/fql/internal/words"
)

// session bundles what one command invocation needs: the resolved config,
// the formatter and the command's streams.
type session struct {
	*RootOptions
	cmd *cobra.Command
	out *OutputFormatter
	lib *library.Library
}

func newSession(opts *RootOptions, cmd *cobra.Command) *session {
	return &session{
		RootOptions: opts,
		cmd:         cmd,
		out:         opts.formatter(cmd),
		lib:         library.Standard(),
	}
}

func (s *session) ctx() context.Context {
	if ctx := s.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// schema loads the CUE schema directory named by the config.
func (s *session) schema() (*schema.Schema, error) {
	s.out.VerboseLog("loading schema from %s", s.Config.Schema)
	sch, err := schema.LoadCUE(s.Config.Schema)
	if err != nil {
		return nil, s.out.fail(ExitCommandError, ErrCodeSchema, "failed to load schema", err)
	}
	return sch, nil
}

// read returns the bytes of an EXPR-style argument: a file path, - for
// stdin, or inline JSON.
func (s *session) read(arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(s.cmd.InOrStdin())
	case strings.HasPrefix(strings.TrimSpace(arg), "{"):
		return []byte(arg), nil
	default:
		return os.ReadFile(arg)
	}
}

// query reads and decodes a boolean expression.
func (s *session) query(arg string) (query.Query, error) {
	data, err := s.read(arg)
	if err != nil {
		return query.Query{}, s.out.fail(ExitCommandError, ErrCodeInput, "failed to read expression", err)
	}
	q, err := query.Unmarshal(data, s.lib).Get()
	if err != nil {
		return query.Query{}, s.out.fail(ExitFailure, ErrCodeDecode, "expression does not decode", err)
	}
	return q, nil
}

// vars parses repeated name=value flags. Values are read as JSON when they
// parse, so 18 is a number and ["a","b"] a list; anything else is a string.
func (s *session) vars(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, s.out.fail(ExitCommandError, ErrCodeInput,
				fmt.Sprintf("invalid variable %q (want name=value)", pair), nil)
		}
		if v, err := ir.ParseJSON([]byte(value)); err == nil {
			out[name] = ir.ToGo(v)
		} else {
			out[name] = value
		}
	}
	return out, nil
}

// object reads a JSON document for predicate evaluation. Integral numbers
// become int64 and the rest float64.
func (s *session) object(arg string) (any, error) {
	data, err := s.read(arg)
	if err != nil {
		return nil, s.out.fail(ExitCommandError, ErrCodeInput, "failed to read object", err)
	}
	v, err := decodeObject(data)
	if err != nil {
		return nil, s.out.fail(ExitCommandError, ErrCodeInput, "object is not valid JSON", err)
	}
	return v, nil
}

func decodeObject(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after the document")
	}
	return numbers(v), nil
}

func numbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		f, _ := val.Float64()
		return f
	case []any:
		for i := range val {
			val[i] = numbers(val[i])
		}
	case map[string]any:
		for k := range val {
			val[k] = numbers(val[k])
		}
	}
	return v
}

// renderer builds the natural language renderer for the configured locale,
// catalog and style.
func (s *session) renderer() ([]words.Option, error) {
	bundle := i18n.Default()
	if s.Config.Catalog != "" {
		if err := bundle.LoadFile(s.Config.Catalog); err != nil {
			return nil, s.out.fail(ExitCommandError, ErrCodeConfig, "failed to load catalog", err)
		}
	}
	catalog, err := bundle.CatalogFor(s.Config.Locale)
	if err != nil {
		return nil, s.out.fail(ExitCommandError, ErrCodeConfig, "invalid locale", err)
	}
	slog.Debug("catalog selected", "locale", catalog.Tag().String())
	return []words.Option{words.WithCatalog(catalog), words.WithStyle(s.Config.Style)}, nil
}

// openStore opens the saved query store.
func (s *session) openStore() (*store.Store, error) {
	st, err := store.Open(s.Config.Store)
	if err != nil {
		return nil, s.out.fail(ExitCommandError, ErrCodeDatabase, "failed to open store", err)
	}
	return st, nil
}

// executor connects to the database exec runs against. With the sqlite
// dialect and no database configured that is the store file.
func (s *session) executor() (*store.Executor, error) {
	dialect := s.Config.SQLDialect()
	driver, dsn := s.Config.DriverName(), s.Config.Database
	if driver == "" {
		driver = store.DriverName
		if dsn == "" {
			dsn = s.Config.Store
		}
	}
	if dsn == "" {
		return nil, s.out.fail(ExitCommandError, ErrCodeDatabase,
			fmt.Sprintf("no database configured for dialect %s", dialect), nil)
	}

	s.out.VerboseLog("connecting with driver %s", driver)
	ex, err := store.Connect(s.ctx(), driver, dsn, dialect)
	if err != nil {
		return nil, s.out.fail(ExitCommandError, ErrCodeDatabase, "failed to connect", err)
	}
	if dialect == querysql.DialectSQLite {
		ex.DB().SetMaxOpenConns(1)
	}
	return ex, nil
}
