package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hothouse-systems/hothouse-core/internal/interlock"
)

// interlockTimeout bounds one pass: two Gateway reads plus the relay writes.
const interlockTimeout = 60 * time.Second

var interlockCmd = &cobra.Command{
	Use:   "interlock",
	Short: "Run one Emergency Interlock pass",
	Long: `Checks the indoor temperature against the emergency bounds and
drives every window channel when a bound is breached. Schedule every
minute; the pass is a no-op during its own cool-down or a hardware
override lockout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, skip, err := setup("interlock")
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		defer rt.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), interlockTimeout)
		defer cancel()

		var tele interlock.Telemetry
		if rt.telemetry != nil {
			tele = rt.telemetry
		}

		runner := interlock.New(
			rt.cfg.Interlock,
			rt.cfg.Control.Temperature.WindowChannels,
			rt.gw, rt.store, rt.notifier, tele, rt.log,
		)

		res, err := runner.Run(ctx)
		if err != nil {
			rt.log.Error("interlock run failed", "error", err)
			return err
		}

		rt.log.Info("interlock run complete",
			"outcome", res.Outcome, "temperature", res.Temperature, "channels", res.Channels)
		return nil
	},
}
