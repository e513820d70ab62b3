package main

import (
	"encoding/json"
	"errors"

	"github.com/maxviazov/persistence-guard/internal/config"
	"github.com/maxviazov/persistence-guard/internal/logger"
	"github.com/maxviazov/persistence-guard/internal/probe"
	"github.com/spf13/cobra"
)

func newProbeCmd(cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Provoke a duplicate and a missing row and report how they were classified",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath())
			if err != nil {
				return err
			}
			appLogger, err := logger.New(&cfg.Logger)
			if err != nil {
				return err
			}

			b, err := openBackend(cmd.Context(), cfg, appLogger)
			if err != nil {
				return err
			}
			defer b.close()

			report, err := probe.Run(cmd.Context(), b.store, b.tx, appLogger)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.OK() {
				return errors.New("probe: at least one step was not classified as expected")
			}
			return nil
		},
	}
}
