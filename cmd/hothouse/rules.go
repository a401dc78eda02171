package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hothouse-systems/hothouse-core/internal/rules"
)

const rulesTimeout = 90 * time.Second

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Run one Rule Engine pass",
	Long: `Evaluates the weather, windowing, temperature-band and irrigation
rules against a fresh sensor snapshot. Schedule on the five-minute
grid; the pass skips the top of the hour, which belongs to the
forecast planner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, skip, err := setup("rules")
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		defer rt.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), rulesTimeout)
		defer cancel()

		var tele rules.Telemetry
		if rt.telemetry != nil {
			tele = rt.telemetry
		}

		runner := rules.New(
			rt.cfg.Control, rt.cfg.Site, rt.cfg.TimezoneLocation(),
			rt.gw, rt.store, rt.notifier, tele, rt.log,
		)

		res, err := runner.Run(ctx)
		if err != nil {
			rt.log.Error("rules run failed", "error", err)
			return err
		}

		rt.log.Info("rules run complete",
			"outcome", res.Outcome, "triggered", res.Triggered,
			"dispatched", res.Dispatched, "elided", res.Elided)
		return nil
	},
}
