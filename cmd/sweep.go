package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete stored objects that no file record refers to",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}

		n, err := d.Sweeper.Sweep(cmd.Context())
		if err != nil {
			return err
		}

		zap.L().Info("Sweep finished", zap.Int("deleted", n))
		return nil
	},
}
