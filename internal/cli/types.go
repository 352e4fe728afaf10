package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chime-db/chime/internal/chtype"
	"github.com/chime-db/chime/internal/model"
)

// TypeEntry is one resolved column type.
type TypeEntry struct {
	Column string `json:"column"`
	Type   string `json:"type"`
}

// TypesResult holds the types listing for one entity.
type TypesResult struct {
	Entity  string      `json:"entity"`
	Kind    string      `json:"kind"`
	Columns []TypeEntry `json:"columns"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	var modelDir string

	cmd := &cobra.Command{
		Use:   "types <entity-or-type>",
		Short: "Resolve storage types",
		Long: `Resolve a storage type name, or list the column types of a model
entity when --model is given.

	chime types 'Decimal(18, 4)'
	chime types --model ./schema orders`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(rootOpts, modelDir, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&modelDir, "model", "", "CUE model directory to resolve an entity against")
	return cmd
}

func runTypes(opts *RootOptions, modelDir, target string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if modelDir == "" {
		t, err := chtype.ParseName(target)
		if err != nil {
			_ = formatter.Error("E_TYPE", err.Error(), nil)
			return NewExitError(ExitFailure, err.Error())
		}
		return formatter.Success(t.Name())
	}

	catalog, err := model.LoadDir(modelDir)
	if err != nil {
		_ = formatter.Error("E_MODEL", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	entity, ok := catalog.Entity(target)
	if !ok {
		msg := fmt.Sprintf("entity %q is not in the model", target)
		_ = formatter.Error("E_ENTITY", msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	result := TypesResult{Entity: entity.Name, Kind: string(entity.Kind)}
	for _, col := range entity.Columns {
		result.Columns = append(result.Columns, TypeEntry{Column: col.Name, Type: col.Type.Name()})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s (%s)\n", result.Entity, result.Kind)
	for _, entry := range result.Columns {
		fmt.Fprintf(formatter.Writer, "  %-24s %s\n", entry.Column, entry.Type)
	}
	return nil
}
