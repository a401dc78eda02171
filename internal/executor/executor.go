package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/gateway"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/plan"
	"github.com/hothouse-systems/hothouse-core/internal/state"
)

// Logger defines the interface for executor logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{}) {}

// Gateway is the subset of the gateway client the executor uses.
type Gateway interface {
	Sensors(ctx context.Context) (gateway.SensorSnapshot, error)
	Status(ctx context.Context) (gateway.Status, error)
	SetRelay(ctx context.Context, channel int, cmd gateway.RelayCommand) error
}

// Telemetry receives optional run metrics. May be nil.
type Telemetry interface {
	WriteRunResult(component string, outcome string, actions int, duration time.Duration)
}

// Outcome classifies a completed executor run.
type Outcome string

const (
	OutcomeNoPlan        Outcome = "no_plan"
	OutcomeSelfLocked    Outcome = "skipped_self_lockout"
	OutcomeGatewayLocked Outcome = "skipped_gateway_lockout"
	OutcomeApplied       Outcome = "applied"
	OutcomeNoAction      Outcome = "no_action"
)

// Result reports what a run did.
type Result struct {
	Outcome        Outcome
	Executed       int
	SkippedWeather int
	Invalid        int
}

// Runner is the Plan Executor: the single execution authority for
// planner-scheduled actions. It dispatches due actions, applies the
// weather override with the Rule Engine's own thresholds, and records
// each action's terminal mark back into the plan document.
type Runner struct {
	control   config.ControlConfig
	gw        Gateway
	store     *state.Store
	telemetry Telemetry
	logger    Logger
	now       func() time.Time
}

// New creates a plan executor runner.
//
// Parameters:
//   - control: Shared thresholds and channel assignments
//   - gw: Gateway client
//   - store: State store holding the plan and lockout documents
//   - telemetry: Optional metrics sink (nil for none)
//   - logger: Logger (nil for no logging)
func New(control config.ControlConfig, gw Gateway, store *state.Store, telemetry Telemetry, logger Logger) *Runner {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Runner{
		control:   control,
		gw:        gw,
		store:     store,
		telemetry: telemetry,
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one executor pass.
//
// Absent or expired plans are a clean no-op. A status fetch failure is
// tolerated: the pass proceeds as if not locked, since a stale plan
// action is less dangerous than never executing while the Gateway API
// flaps. A sensor fetch failure skips the weather override the same
// way. A relay rejected with the Gateway's lockout status leaves the
// action pending for the next pass; any other dispatch failure aborts
// the remaining actions but keeps the marks already earned.
//
// Returns:
//   - Result: Outcome and per-category action counts
//   - error: Terminal dispatch failure
func (r *Runner) Run(ctx context.Context) (Result, error) {
	started := r.now()

	p, err := plan.Load(r.store, started)
	if err != nil {
		r.logger.Warn("plan unreadable", "error", err)
	}
	if p == nil {
		r.logger.Info("no valid plan")
		return r.finish(started, Result{Outcome: OutcomeNoPlan}), nil
	}

	lockout, err := state.LoadLockout(r.store)
	if err != nil {
		r.logger.Warn("lockout state unreadable, treating as unlocked", "error", err)
	}
	if lockout.Locked(started) {
		r.logger.Info("self-lockout active, skipping", "locked_until", lockout.LockedUntil)
		return r.finish(started, Result{Outcome: OutcomeSelfLocked}), nil
	}

	if status, err := r.gw.Status(ctx); err != nil {
		r.logger.Warn("status unavailable, assuming not locked", "error", err)
	} else if status.LockedOut {
		r.logger.Info("hardware override lockout active, skipping")
		return r.finish(started, Result{Outcome: OutcomeGatewayLocked}), nil
	}

	weather, haveWeather := r.weather(ctx)

	res, modified, dispatchErr := r.execute(ctx, p, started, weather, haveWeather)

	if modified {
		if saveErr := plan.Save(r.store, p); saveErr != nil {
			r.logger.Warn("saving plan marks", "error", saveErr)
			if dispatchErr == nil {
				dispatchErr = saveErr
			}
		}
	}

	if dispatchErr != nil {
		return Result{}, dispatchErr
	}

	if res.Executed == 0 && res.SkippedWeather == 0 {
		res.Outcome = OutcomeNoAction
	} else {
		res.Outcome = OutcomeApplied
	}
	return r.finish(started, res), nil
}

// weather fetches current readings for the override check. A fetch
// failure disables the check for this pass.
func (r *Runner) weather(ctx context.Context) (gateway.Weather, bool) {
	snapshot, err := r.gw.Sensors(ctx)
	if err != nil {
		r.logger.Warn("sensors unavailable, weather override disabled", "error", err)
		return gateway.Weather{}, false
	}
	return snapshot.Weather(), true
}

// execute walks the plan's actions and dispatches the due pending ones.
func (r *Runner) execute(ctx context.Context, p *plan.Plan, now time.Time, weather gateway.Weather, haveWeather bool) (res Result, modified bool, err error) {
	suppress := haveWeather &&
		(weather.Rainfall > r.control.Rain.ThresholdMMH ||
			weather.WindSpeedMS > r.control.Wind.StrongThresholdMS)

	for i := range p.Actions {
		a := &p.Actions[i]
		if a.Executed.Terminal() || !a.Due(now) {
			continue
		}

		if a.Channel < 1 || a.Channel > r.control.ChannelMax {
			r.logger.Warn("action channel out of range", "channel", a.Channel)
			res.Invalid++
			continue
		}

		if suppress && r.windowChannel(a.Channel) {
			a.Executed = plan.MarkSkippedWeather
			modified = true
			res.SkippedWeather++
			r.logger.Info("action suppressed by weather",
				"channel", a.Channel, "rain", weather.Rainfall, "wind", weather.WindSpeedMS)
			continue
		}

		cmd := gateway.RelayCommand{
			Value:       a.Value,
			DurationSec: r.clampDuration(a.DurationSec),
			Reason:      a.Reason,
		}
		if dispatchErr := r.gw.SetRelay(ctx, a.Channel, cmd); dispatchErr != nil {
			if errors.Is(dispatchErr, gateway.ErrLockedOut) {
				// Left pending: the next pass retries once the lockout clears.
				r.logger.Info("dispatch rejected by hardware lockout", "channel", a.Channel)
				return res, modified, nil
			}
			return res, modified, fmt.Errorf("dispatching channel %d: %w", a.Channel, dispatchErr)
		}

		a.Executed = plan.MarkDone
		modified = true
		res.Executed++
		r.logger.Info("action executed", "channel", a.Channel, "value", a.Value)
	}

	return res, modified, nil
}

// clampDuration enforces the hard dispatch ceiling.
func (r *Runner) clampDuration(duration int) int {
	max := r.control.MaxActionDuration
	if max <= 0 {
		max = 3600
	}
	if duration > max {
		return max
	}
	return duration
}

// windowChannel reports whether a channel belongs to the window set,
// the only set subject to weather suppression.
func (r *Runner) windowChannel(channel int) bool {
	for _, ch := range r.control.Temperature.WindowChannels {
		if ch == channel {
			return true
		}
	}
	return false
}

func (r *Runner) finish(started time.Time, res Result) Result {
	if r.telemetry != nil {
		r.telemetry.WriteRunResult("execute", string(res.Outcome), res.Executed, r.now().Sub(started))
	}
	return res
}
