package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chime-db/chime/internal/compile"
	"github.com/chime-db/chime/internal/extsource"
	"github.com/chime-db/chime/internal/logical"
	"github.com/chime-db/chime/internal/model"
	"github.com/chime-db/chime/internal/rewrite"
	"github.com/chime-db/chime/internal/sqlgen"
)

// ExplainResult holds the rendered SQL for an entity scan.
type ExplainResult struct {
	Entity string `json:"entity"`
	SQL    string `json:"sql"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		modelDir   string
		configPath string
		columns    []string
		final      bool
		sample     float64
		limit      int64
	)

	cmd := &cobra.Command{
		Use:   "explain <entity>",
		Short: "Show the SQL a simple entity scan compiles to",
		Long: `Compile a scan over one model entity through the full pipeline
(compile, rewrite, generate) and print the resulting SQL. Dictionary and
external entities render their dictionary() or table-function sources.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, explainOptions{
				modelDir:   modelDir,
				configPath: configPath,
				entity:     args[0],
				columns:    columns,
				final:      final,
				sample:     sample,
				limit:      limit,
			}, cmd)
		},
	}
	cmd.Flags().StringVar(&modelDir, "model", ".", "CUE model directory")
	cmd.Flags().StringVar(&configPath, "config", "sources.yaml", "source configuration file")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to select (default *)")
	cmd.Flags().BoolVar(&final, "final", false, "read with deduplication")
	cmd.Flags().Float64Var(&sample, "sample", 0, "sampling fraction in (0, 1]")
	cmd.Flags().Int64Var(&limit, "limit", 0, "row limit")
	return cmd
}

type explainOptions struct {
	modelDir   string
	configPath string
	entity     string
	columns    []string
	final      bool
	sample     float64
	limit      int64
}

func runExplain(opts *RootOptions, eo explainOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	catalog, err := model.LoadDir(eo.modelDir)
	if err != nil {
		_ = formatter.Error("E_MODEL", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	// Source configuration is optional; external entities need it,
	// native ones do not.
	var resolver *extsource.Resolver
	if _, statErr := os.Stat(eo.configPath); statErr == nil {
		resolver, err = extsource.Load(eo.configPath)
		if err != nil {
			_ = formatter.Error("E_CONFIG", err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
	}

	q := logical.From(eo.entity)
	for _, col := range eo.columns {
		q.Select(logical.C(col))
	}
	if eo.final {
		q.Final()
	}
	if eo.sample > 0 {
		q.Sample(eo.sample)
	}
	if eo.limit > 0 {
		q.Take(eo.limit)
	}

	plan, err := compile.New(catalog).Compile(q.Build())
	if err != nil {
		_ = formatter.Error("E_COMPILE", err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	plan, err = rewrite.New(catalog, resolver).Rewrite(plan)
	if err != nil {
		_ = formatter.Error("E_REWRITE", err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	out, err := sqlgen.Generate(plan)
	if err != nil {
		_ = formatter.Error("E_SQLGEN", err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(ExplainResult{Entity: eo.entity, SQL: out.SQL})
	}
	return formatter.Success(out.SQL)
}
