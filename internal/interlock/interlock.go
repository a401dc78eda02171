package interlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/gateway"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/notify"
	"github.com/hothouse-systems/hothouse-core/internal/state"
)

// Logger defines the interface for interlock run logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// defaultCooldown is the self-lockout window when the config leaves it zero.
const defaultCooldown = 300 * time.Second

// Gateway is the subset of the gateway client the interlock uses.
type Gateway interface {
	Sensors(ctx context.Context) (gateway.SensorSnapshot, error)
	Status(ctx context.Context) (gateway.Status, error)
	SetRelay(ctx context.Context, channel int, cmd gateway.RelayCommand) error
}

// Telemetry receives optional run metrics. May be nil.
type Telemetry interface {
	WriteLockoutEvent(action string, temperature float64)
	WriteRunResult(component string, outcome string, actions int, duration time.Duration)
}

// Outcome classifies a completed interlock run.
type Outcome string

const (
	OutcomeSelfLocked    Outcome = "skipped_self_lockout"
	OutcomeGatewayLocked Outcome = "skipped_gateway_lockout"
	OutcomeOpened        Outcome = "emergency_open"
	OutcomeClosed        Outcome = "emergency_close"
	OutcomeNoAction      Outcome = "no_action"
)

// Result reports what a run did.
type Result struct {
	Outcome     Outcome
	Temperature float64
	Channels    []int
}

// Runner is the Emergency Interlock: the last-resort temperature guard
// that drives the window channels regardless of plans or rules.
type Runner struct {
	cfg       config.InterlockConfig
	channels  []int
	gw        Gateway
	store     *state.Store
	notifier  notify.Notifier
	telemetry Telemetry
	logger    Logger
	now       func() time.Time
}

// New creates an interlock runner.
//
// Parameters:
//   - cfg: Interlock thresholds and sensor sources
//   - channels: Window relay channels driven on a trigger
//   - gw: Gateway client
//   - store: State store holding the lockout record
//   - notifier: Best-effort notifier (nil for none)
//   - telemetry: Optional metrics sink (nil for none)
//   - logger: Logger (nil for no logging)
func New(cfg config.InterlockConfig, channels []int, gw Gateway, store *state.Store, notifier notify.Notifier, telemetry Telemetry, logger Logger) *Runner {
	if logger == nil {
		logger = noopLogger{}
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &Runner{
		cfg:       cfg,
		channels:  channels,
		gw:        gw,
		store:     store,
		notifier:  notifier,
		telemetry: telemetry,
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one interlock pass.
//
// The pass is a no-op while the self-lockout cool-down or the hardware
// override lockout is active. Otherwise the indoor temperature is read
// and, when it breaches a bound, every window channel is driven and a
// fresh lockout record is written so the next passes stay quiet for the
// cool-down window. Any Gateway failure aborts the pass without
// actuation; the next scheduled run retries on its own.
//
// Returns:
//   - Result: Outcome classification and the channels driven
//   - error: Terminal failure (sensor or relay communication)
func (r *Runner) Run(ctx context.Context) (Result, error) {
	started := r.now()

	lockout, err := state.LoadLockout(r.store)
	if err != nil {
		r.logger.Warn("lockout state unreadable, treating as unlocked", "error", err)
	}
	if lockout.Locked(started) {
		r.logger.Info("self-lockout active, skipping",
			"locked_until", lockout.LockedUntil, "last_action", lockout.LastAction)
		return r.finish(started, Result{Outcome: OutcomeSelfLocked}), nil
	}

	status, err := r.gw.Status(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetching gateway status: %w", err)
	}
	if status.LockedOut {
		r.logger.Info("hardware override lockout active, skipping")
		return r.finish(started, Result{Outcome: OutcomeGatewayLocked}), nil
	}

	temp, err := r.temperature(ctx)
	if err != nil {
		return Result{}, err
	}

	var action string
	var value int
	var outcome Outcome
	switch {
	case temp > r.cfg.HighBoundC:
		action, value, outcome = state.ActionOpen, 1, OutcomeOpened
	case temp < r.cfg.LowBoundC:
		action, value, outcome = state.ActionClose, 0, OutcomeClosed
	default:
		return r.finish(started, Result{Outcome: OutcomeNoAction, Temperature: temp}), nil
	}

	r.logger.Warn("temperature bound breached",
		"temperature", temp, "high_bound", r.cfg.HighBoundC, "low_bound", r.cfg.LowBoundC,
		"action", action)

	driven, err := r.drive(ctx, value, temp, action)
	if err != nil {
		return Result{}, err
	}
	if driven == nil {
		// Hardware lockout surfaced mid-run: treat like the status check.
		return r.finish(started, Result{Outcome: OutcomeGatewayLocked, Temperature: temp}), nil
	}

	if err := r.lock(started, action, temp); err != nil {
		return Result{}, err
	}

	r.notifier.Emergency("interlock",
		fmt.Sprintf("emergency %s at %.1f°C", action, temp))

	if r.telemetry != nil {
		r.telemetry.WriteLockoutEvent(action, temp)
	}

	return r.finish(started, Result{Outcome: outcome, Temperature: temp, Channels: driven}), nil
}

// temperature reads the indoor temperature, falling back to the
// configured secondary source when the preferred one is absent.
func (r *Runner) temperature(ctx context.Context) (float64, error) {
	snapshot, err := r.gw.Sensors(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching sensors: %w", err)
	}

	if v, ok := snapshot.Value(r.cfg.TemperatureSource); ok {
		return v, nil
	}
	if r.cfg.FallbackSource != "" {
		if v, ok := snapshot.Value(r.cfg.FallbackSource); ok {
			r.logger.Warn("preferred temperature source absent, using fallback",
				"preferred", r.cfg.TemperatureSource, "fallback", r.cfg.FallbackSource)
			return v, nil
		}
	}

	return 0, fmt.Errorf("no temperature reading from %q or %q",
		r.cfg.TemperatureSource, r.cfg.FallbackSource)
}

// drive writes every window channel. Returns the driven channels, or
// nil without error when the Gateway rejected the first command with
// its own lockout.
func (r *Runner) drive(ctx context.Context, value int, temp float64, action string) ([]int, error) {
	reason := fmt.Sprintf("interlock %s: %.1f°C", action, temp)

	var driven []int
	for _, ch := range r.channels {
		err := r.gw.SetRelay(ctx, ch, gateway.RelayCommand{Value: value, Reason: reason})
		if errors.Is(err, gateway.ErrLockedOut) {
			r.logger.Info("relay rejected by hardware lockout", "channel", ch)
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("driving channel %d: %w", ch, err)
		}
		driven = append(driven, ch)
	}
	return driven, nil
}

// lock writes the post-trigger cool-down record.
func (r *Runner) lock(now time.Time, action string, temp float64) error {
	cooldown := defaultCooldown
	if r.cfg.Cooldown > 0 {
		cooldown = time.Duration(r.cfg.Cooldown) * time.Second
	}
	until := now.Add(cooldown)

	err := state.SaveLockout(r.store, state.LockoutState{
		LockedUntil:     &until,
		LastAction:      action,
		LastTemperature: temp,
		TriggeredAt:     now,
	})
	if err != nil {
		return fmt.Errorf("writing lockout state: %w", err)
	}

	r.logger.Info("lockout engaged", "action", action, "until", until)
	return nil
}

// finish stamps run telemetry and returns the result unchanged.
func (r *Runner) finish(started time.Time, res Result) Result {
	if r.telemetry != nil {
		r.telemetry.WriteRunResult("interlock", string(res.Outcome), len(res.Channels), r.now().Sub(started))
	}
	return res
}
