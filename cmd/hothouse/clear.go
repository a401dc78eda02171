package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hothouse-systems/hothouse-core/internal/gateway"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/logging"
	"github.com/hothouse-systems/hothouse-core/internal/state"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the emergency lockouts",
	Long: `Operator command: clears the Gateway's physical-override lockout and
the local interlock cool-down record so normal control resumes on the
next scheduled runs. Use after resolving whatever tripped the
emergency.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		log := logging.New(cfg.Logging, version).With("component", "clear")

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		gw := gateway.New(cfg.Gateway, log)
		if err := gw.ClearEmergency(ctx); err != nil {
			log.Error("clearing gateway lockout", "error", err)
			return err
		}

		store := state.NewStore(cfg.State.Dir)
		if err := state.SaveLockout(store, state.LockoutState{LastAction: state.ActionNone}); err != nil {
			log.Error("resetting interlock cool-down", "error", err)
			return err
		}

		log.Info("lockouts cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
