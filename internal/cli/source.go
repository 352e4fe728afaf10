package cli

import (
	"github.com/spf13/cobra"

	"github.com/chime-db/chime/internal/extsource"
)

// SourceResult holds a rendered table-function call.
type SourceResult struct {
	Source   string `json:"source"`
	Provider string `json:"provider"`
	Call     string `json:"call"`
}

// NewSourceCommand creates the source command group.
func NewSourceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Inspect external source configuration",
	}
	cmd.AddCommand(newSourceRenderCommand(rootOpts))
	return cmd
}

func newSourceRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "render <source> [table]",
		Short: "Render the table-function call for a configured source",
		Long: `Render the FROM-clause table-function call a query against the named
source would use. Credentials come from the YAML configuration with
CHIME_SOURCES__<NAME>__<FIELD> environment overrides applied.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := ""
			if len(args) == 2 {
				table = args[1]
			}
			return runSourceRender(rootOpts, configPath, args[0], table, cmd)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "sources.yaml", "source configuration file")
	return cmd
}

func runSourceRender(opts *RootOptions, configPath, source, table string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	resolver, err := extsource.Load(configPath)
	if err != nil {
		_ = formatter.Error("E_CONFIG", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	call, provider, err := resolver.Render(source, table)
	if err != nil {
		_ = formatter.Error("E_SOURCE", err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(SourceResult{Source: source, Provider: provider, Call: call})
	}
	return formatter.Success(call)
}
