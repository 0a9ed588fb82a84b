package cmd

import (
	"github.com/spf13/cobra"

	"github.com/assetkit/assetindexer/config"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "assetindexer",
		Short:         "Index tokenized asset events into a queryable store",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(indexerCmd())
	cmd.AddCommand(replayCmd())
	cmd.AddCommand(reconcileCmd())
	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(schemaCmd())
	cmd.AddCommand(publishCmd())

	return cmd
}

func SetVersion(version, commit string) {
	config.SetBuildInfo(version, commit)
}
