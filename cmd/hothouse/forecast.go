package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hothouse-systems/hothouse-core/internal/advisor"
	"github.com/hothouse-systems/hothouse-core/internal/forecast"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/database"
	"github.com/hothouse-systems/hothouse-core/internal/journal"
)

// forecastTimeout bounds the whole cycle including every advisory round.
const forecastTimeout = 5 * time.Minute

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run one Forecast Planner cycle",
	Long: `Consults the advisory service with read-only sensor tools and
writes a validated plan for the coming hour. Schedule hourly. The
cycle is skipped entirely while any lockout is active.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, skip, err := setup("forecast")
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		defer rt.close()

		db, err := database.Open(database.Config{
			Path:        rt.cfg.Database.Path,
			WALMode:     rt.cfg.Database.WALMode,
			BusyTimeout: rt.cfg.Database.BusyTimeout,
		})
		if err != nil {
			rt.log.Error("opening journal database", "error", err)
			return err
		}
		defer db.Close()

		repo, err := journal.NewSQLiteRepository(db.DB)
		if err != nil {
			rt.log.Error("preparing journal", "error", err)
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), forecastTimeout)
		defer cancel()

		var tele forecast.Telemetry
		if rt.telemetry != nil {
			tele = rt.telemetry
		}

		runner := forecast.New(
			rt.cfg.Planner, rt.cfg.Control, rt.cfg.Site, rt.cfg.TimezoneLocation(),
			advisor.New(rt.cfg.Planner.Advisor, rt.log),
			rt.gw, rt.store, repo, tele, rt.log,
		)

		res, err := runner.Run(ctx)
		if err != nil {
			rt.log.Error("forecast cycle failed", "error", err)
			return err
		}

		rt.log.Info("forecast cycle complete", "outcome", res.Outcome, "actions", res.Actions)
		return nil
	},
}
