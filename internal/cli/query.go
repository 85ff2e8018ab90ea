package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rmkfs/rmkfs/internal/config"
	"github.com/rmkfs/rmkfs/internal/querycontext"
	"github.com/rmkfs/rmkfs/internal/scanner"
)

func newQueryCmd() *cobra.Command {
	var sqlText string
	var root string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Scan root and run one ad-hoc SQL statement against the metadata view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, root, sqlText)
		},
	}
	cmd.Flags().StringVar(&sqlText, "sql", "", "SQL statement to execute (required)")
	cmd.Flags().StringVar(&root, "root", "", "notebook cache root (defaults to config)")
	cmd.MarkFlagRequired("sql")

	return cmd
}

func runQuery(cmd *cobra.Command, root, sqlText string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if root == "" {
		root = cfg.CacheRoot
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	qc, err := querycontext.New()
	if err != nil {
		return err
	}
	defer qc.Close()

	sc, err := scanner.New(root, qc)
	if err != nil {
		return err
	}
	if err := sc.Scan(ctx); err != nil {
		return err
	}

	return printRows(ctx, qc, sqlText)
}

func printRows(ctx context.Context, qc *querycontext.Context, query string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	first := true
	var cols []string
	return qc.Query(ctx, query, nil, func(rows *sql.Rows) error {
		if first {
			first = false
			var err error
			cols, err = rows.Columns()
			if err != nil {
				return err
			}
			for i, c := range cols {
				if i > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, c)
			}
			fmt.Fprintln(tw)
		}

		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range vals {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprintf(tw, "%v", v)
		}
		fmt.Fprintln(tw)
		return nil
	})
}
