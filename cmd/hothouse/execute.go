package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hothouse-systems/hothouse-core/internal/executor"
)

const executeTimeout = 60 * time.Second

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Run one Plan Executor pass",
	Long: `Dispatches due actions from the current plan, suppressing window
actions when live weather breaches the shared thresholds. Schedule
every minute, offset slightly after the interlock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, skip, err := setup("execute")
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		defer rt.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), executeTimeout)
		defer cancel()

		var tele executor.Telemetry
		if rt.telemetry != nil {
			tele = rt.telemetry
		}

		runner := executor.New(rt.cfg.Control, rt.gw, rt.store, tele, rt.log)

		res, err := runner.Run(ctx)
		if err != nil {
			rt.log.Error("execute run failed", "error", err)
			return err
		}

		rt.log.Info("execute run complete",
			"outcome", res.Outcome, "executed", res.Executed,
			"skipped_weather", res.SkippedWeather, "invalid", res.Invalid)
		return nil
	},
}
