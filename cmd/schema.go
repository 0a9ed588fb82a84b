package cmd

import (
	"ariga.io/atlas-provider-gorm/gormschema"
	"github.com/spf13/cobra"

	"github.com/assetkit/assetindexer/types"
)

// schemaCmd prints the desired schema for atlas's external_schema data source.
func schemaCmd() *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the SQL schema of every indexed table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stmts, err := gormschema.New(dialect).Load(types.AllTables()...)
			if err != nil {
				return err
			}
			cmd.Print(stmts)
			return nil
		},
	}

	cmd.Flags().StringVar(&dialect, "dialect", "postgres", "SQL dialect: postgres or sqlite")
	return cmd
}
