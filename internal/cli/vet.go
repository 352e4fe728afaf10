package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chime-db/chime/internal/model"
)

// VetResult holds the model vet summary.
type VetResult struct {
	Valid    bool     `json:"valid"`
	Entities []string `json:"entities,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewVetCommand creates the vet command.
func NewVetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vet <model-dir>",
		Short: "Check a CUE model directory",
		Long: `Compile the CUE entity model and report schema problems.

Every entity declaration, column and storage type name is resolved; the
command exits non-zero on the first problem found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVet(rootOpts, args[0], cmd)
		},
	}
}

func runVet(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	catalog, err := model.LoadDir(dir)
	if err != nil {
		_ = formatter.Error("E_MODEL", err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	names := catalog.Names()
	formatter.VerboseLog("compiled %d entit(y/ies) from %s", len(names), dir)

	if formatter.Format == "json" {
		return formatter.Success(VetResult{Valid: true, Entities: names})
	}
	fmt.Fprintf(formatter.Writer, "ok: %d entities\n", len(names))
	for _, name := range names {
		fmt.Fprintf(formatter.Writer, "  %s\n", name)
	}
	return nil
}
