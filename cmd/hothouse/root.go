package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hothouse-systems/hothouse-core/internal/gateway"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/influxdb"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/logging"
	"github.com/hothouse-systems/hothouse-core/internal/notify"
	"github.com/hothouse-systems/hothouse-core/internal/runlock"
	"github.com/hothouse-systems/hothouse-core/internal/state"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hothouse",
	Short: "Greenhouse climate control layers",
	Long: `Hothouse runs one control layer per invocation: the emergency
interlock, the rule engine, the forecast planner or the plan executor.
Layers coordinate only through persisted state files and the actuator
Gateway; schedule each subcommand independently.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath,
		"path to config.yaml")

	rootCmd.AddCommand(interlockCmd, rulesCmd, forecastCmd, executeCmd)
}

// runtime bundles the per-invocation wiring shared by every layer.
type runtime struct {
	cfg       *config.Config
	log       *logging.Logger
	store     *state.Store
	gw        *gateway.Client
	notifier  notify.Notifier
	telemetry *influxdb.Client
	lock      *runlock.Lock
}

// setup loads configuration and wires the shared collaborators.
//
// A held component lock is not an error: the previous invocation is
// still running and this one must skip silently, so setup reports it
// with skip=true and the caller exits 0.
func setup(component string) (rt *runtime, skip bool, err error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, false, fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version).With("component", component)

	lock, err := runlock.Acquire(cfg.LockPath(component))
	if errors.Is(err, runlock.ErrHeld) {
		log.Info("previous invocation still running, skipping")
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	rt = &runtime{
		cfg:      cfg,
		log:      log,
		store:    state.NewStore(cfg.State.Dir),
		gw:       gateway.New(cfg.Gateway, log),
		notifier: notify.New(cfg.Notify, log),
		lock:     lock,
	}

	if tsdb, err := influxdb.Connect(cfg.InfluxDB, log); err != nil {
		if !errors.Is(err, influxdb.ErrDisabled) {
			log.Warn("telemetry unavailable", "error", err)
		}
	} else {
		rt.telemetry = tsdb
	}

	return rt, false, nil
}

// close releases every collaborator. Safe on partial runtimes.
func (rt *runtime) close() {
	if rt.telemetry != nil {
		if err := rt.telemetry.Close(); err != nil {
			rt.log.Warn("closing telemetry", "error", err)
		}
	}
	if rt.notifier != nil {
		if err := rt.notifier.Close(); err != nil {
			rt.log.Warn("closing notifier", "error", err)
		}
	}
	if err := rt.lock.Release(); err != nil {
		rt.log.Warn("releasing run lock", "error", err)
	}
}
