package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/gateway"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/notify"
	"github.com/hothouse-systems/hothouse-core/internal/plan"
	"github.com/hothouse-systems/hothouse-core/internal/state"
)

// Logger defines the interface for rule engine logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Gateway is the subset of the gateway client the rule engine uses.
type Gateway interface {
	Sensors(ctx context.Context) (gateway.SensorSnapshot, error)
	Status(ctx context.Context) (gateway.Status, error)
	SetRelay(ctx context.Context, channel int, cmd gateway.RelayCommand) error
}

// Telemetry receives optional run metrics. May be nil.
type Telemetry interface {
	WriteRunResult(component string, outcome string, actions int, duration time.Duration)
	WriteSolarDose(date string, doseMJ float64, triggered bool)
	WriteSensorMetric(name, source string, value float64)
}

// Outcome classifies a completed rule engine run.
type Outcome string

const (
	OutcomePlannerTick   Outcome = "skipped_planner_tick"
	OutcomeSelfLocked    Outcome = "skipped_self_lockout"
	OutcomeGatewayLocked Outcome = "skipped_gateway_lockout"
	OutcomeApplied       Outcome = "applied"
	OutcomeNoAction      Outcome = "no_action"
)

// Result reports what a run did.
type Result struct {
	Outcome    Outcome
	Triggered  []string
	Dispatched int
	Elided     int
}

// Runner is the Rule Engine: reflex-level weather, windowing and
// irrigation control on the five-minute grid.
type Runner struct {
	control   config.ControlConfig
	latitude  float64
	longitude float64
	location  *time.Location
	gw        Gateway
	store     *state.Store
	notifier  notify.Notifier
	telemetry Telemetry
	logger    Logger
	now       func() time.Time
}

// New creates a rule engine runner.
//
// Parameters:
//   - control: Shared thresholds and channel assignments
//   - site: Location and timezone for sun calculations
//   - gw: Gateway client
//   - store: State store for the accumulator and run state
//   - notifier: Best-effort notifier (nil for none)
//   - telemetry: Optional metrics sink (nil for none)
//   - logger: Logger (nil for no logging)
func New(control config.ControlConfig, site config.SiteConfig, loc *time.Location, gw Gateway, store *state.Store, notifier notify.Notifier, telemetry Telemetry, logger Logger) *Runner {
	if logger == nil {
		logger = noopLogger{}
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{
		control:   normalize(control),
		latitude:  site.Location.Latitude,
		longitude: site.Location.Longitude,
		location:  loc,
		gw:        gw,
		store:     store,
		notifier:  notifier,
		telemetry: telemetry,
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one rule engine pass.
//
// The tick at the top of the hour belongs to the Forecast Planner and
// is skipped outright. Lockouts (own cool-down or hardware override)
// also skip the pass. Otherwise the rules are evaluated in priority
// order against a fresh sensor snapshot, redundant relay writes are
// elided against the previous run's state, and the solar accumulator
// advances regardless of what the window rules decided.
//
// Returns:
//   - Result: Outcome, triggered rule names, dispatch counts
//   - error: Terminal failure (sensor/Gateway communication, state writes)
func (r *Runner) Run(ctx context.Context) (Result, error) {
	started := r.now().In(r.location)

	if started.Minute() == 0 {
		r.logger.Info("planner tick, skipping rule evaluation")
		return r.finish(started, Result{Outcome: OutcomePlannerTick}), nil
	}

	lockout, err := state.LoadLockout(r.store)
	if err != nil {
		r.logger.Warn("lockout state unreadable, treating as unlocked", "error", err)
	}
	if lockout.Locked(started) {
		r.logger.Info("self-lockout active, skipping", "locked_until", lockout.LockedUntil)
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

	snapshot, err := r.gw.Sensors(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetching sensors: %w", err)
	}
	if r.telemetry != nil {
		if temp, ok := snapshot.Value(r.control.Sensors.Temperature); ok {
			r.telemetry.WriteSensorMetric("air_temperature", r.control.Sensors.Temperature, temp)
		}
	}

	acc, err := state.LoadSolarAccumulator(r.store, started)
	if err != nil {
		r.logger.Warn("solar accumulator unreadable, starting fresh", "error", err)
	}

	activePlan, err := plan.Load(r.store, started)
	if err != nil {
		r.logger.Warn("plan unreadable, evaluating without deference", "error", err)
	}

	prev, err := state.LoadRunState(r.store)
	if err != nil {
		r.logger.Warn("run state unreadable, forcing full write-through", "error", err)
	}

	eval := r.evaluate(snapshot, started, activePlan != nil, &acc)
	for _, rule := range eval.triggered {
		r.logger.Info("rule triggered", "rule", rule)
	}

	dispatched, elided, dispatchErr := r.dispatch(ctx, eval.actions, prev)

	// The accumulator advanced even when dispatch failed part-way.
	if saveErr := state.SaveSolarAccumulator(r.store, acc, started); saveErr != nil {
		r.logger.Error("saving solar accumulator", "error", saveErr)
	}
	if r.telemetry != nil {
		r.telemetry.WriteSolarDose(acc.Date, acc.AccumulatedMJ, eval.irrigated)
	}

	if saveErr := r.saveRunState(started, eval.triggered, prev, dispatched); saveErr != nil {
		r.logger.Error("saving run state", "error", saveErr)
	}

	if dispatchErr != nil {
		if errors.Is(dispatchErr, gateway.ErrLockedOut) {
			r.logger.Info("relay rejected by hardware lockout, stopping")
			return r.finish(started, Result{Outcome: OutcomeGatewayLocked, Triggered: eval.triggered, Dispatched: len(dispatched)}), nil
		}
		return Result{}, dispatchErr
	}

	if eval.irrigated {
		r.notifier.Notify("rules", "irrigation",
			fmt.Sprintf("solar dose reached, irrigating channel %d for %ds",
				r.control.Irrigation.Channel, r.control.Irrigation.Duration))
	}

	outcome := OutcomeNoAction
	if len(dispatched) > 0 {
		outcome = OutcomeApplied
	}
	return r.finish(started, Result{
		Outcome:    outcome,
		Triggered:  eval.triggered,
		Dispatched: len(dispatched),
		Elided:     elided,
	}), nil
}

// dispatch sends each action, eliding window commands whose value
// matches the previous run. Returns the actions actually sent.
func (r *Runner) dispatch(ctx context.Context, actions []state.RelayAction, prev state.RunState) (sent []state.RelayAction, elided int, err error) {
	for _, a := range actions {
		if a.Channel != r.control.Irrigation.Channel {
			if last, ok := prev.LastValue(a.Channel); ok && last == a.Value {
				elided++
				continue
			}
		}

		cmd := gateway.RelayCommand{Value: a.Value, DurationSec: a.DurationSec, Reason: a.Reason}
		if err := r.gw.SetRelay(ctx, a.Channel, cmd); err != nil {
			if errors.Is(err, gateway.ErrLockedOut) {
				return sent, elided, err
			}
			return sent, elided, fmt.Errorf("driving channel %d: %w", a.Channel, err)
		}
		sent = append(sent, a)
	}
	return sent, elided, nil
}

// saveRunState merges this run's dispatched actions over the previous
// run's per-channel record. The irrigation channel is transient (the
// valve self-closes) and is not carried.
func (r *Runner) saveRunState(now time.Time, triggered []string, prev state.RunState, sent []state.RelayAction) error {
	merged := map[int]state.RelayAction{}
	for _, a := range prev.RelayActions {
		if a.Channel != r.control.Irrigation.Channel {
			merged[a.Channel] = a
		}
	}
	for _, a := range sent {
		if a.Channel != r.control.Irrigation.Channel {
			merged[a.Channel] = a
		}
	}

	actions := make([]state.RelayAction, 0, len(merged))
	for ch := 1; ch <= r.control.ChannelMax; ch++ {
		if a, ok := merged[ch]; ok {
			actions = append(actions, a)
		}
	}

	return state.SaveRunState(r.store, state.RunState{
		LastRunAt:      now,
		TriggeredRules: triggered,
		RelayActions:   actions,
	})
}

func (r *Runner) finish(started time.Time, res Result) Result {
	if r.telemetry != nil {
		r.telemetry.WriteRunResult("rules", string(res.Outcome), res.Dispatched, r.now().Sub(started))
	}
	return res
}

// Fail-safe evaluation defaults, used when the config leaves a
// safety-relevant value unset.
const (
	failsafeRainThreshold  = 0.5
	failsafeWindThreshold  = 5.0
	failsafeTickSeconds    = 300
	failsafeSolarThreshold = 0.9
	failsafeIrrigationSec  = 270
	failsafeChannelMax     = 8
)

// normalize fills unset safety values so a broken config file degrades
// to conservative behaviour instead of crashing or disabling a rule.
func normalize(c config.ControlConfig) config.ControlConfig {
	if c.Rain.ThresholdMMH <= 0 {
		c.Rain.ThresholdMMH = failsafeRainThreshold
	}
	if c.Wind.StrongThresholdMS <= 0 {
		c.Wind.StrongThresholdMS = failsafeWindThreshold
	}
	if c.Irrigation.TickSeconds <= 0 {
		c.Irrigation.TickSeconds = failsafeTickSeconds
	}
	if c.Irrigation.SolarThresholdMJ <= 0 {
		c.Irrigation.SolarThresholdMJ = failsafeSolarThreshold
	}
	if c.Irrigation.Duration <= 0 {
		c.Irrigation.Duration = failsafeIrrigationSec
	}
	if c.ChannelMax <= 0 {
		c.ChannelMax = failsafeChannelMax
	}
	return c
}
