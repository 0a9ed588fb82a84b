package cmd

import (
	"github.com/spf13/cobra"

	"github.com/assetkit/assetindexer/config"
	"github.com/assetkit/assetindexer/indexer"
	"github.com/assetkit/assetindexer/log"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile [asset...]",
		Short: "Recompute holder counts from balances",
		Long: `
Recompute the holder count of the given assets, or of every asset when none
are given, and overwrite stored counts that drifted.

Do not run this against a database an indexer is writing to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			logger := log.NewLogger(cfg)

			rt, err := openRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			idx := indexer.New(cfg.GetIndexerConfig(), logger, rt.store, nil)
			for _, res := range idx.Reconcile(cmd.Context(), normalizeAssets(args)...) {
				cmd.Printf("%s stored=%d actual=%d adjusted=%t\n", res.Asset, res.Stored, res.Actual, res.Adjusted)
			}
			return nil
		},
	}

	return cmd
}
