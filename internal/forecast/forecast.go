package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/advisor"
	"github.com/hothouse-systems/hothouse-core/internal/gateway"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/journal"
	"github.com/hothouse-systems/hothouse-core/internal/plan"
	"github.com/hothouse-systems/hothouse-core/internal/state"
	"github.com/hothouse-systems/hothouse-core/internal/suncalc"
)

// Logger defines the interface for planner logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Advisor runs the bounded planning exchange.
type Advisor interface {
	Consult(ctx context.Context, systemPrompt, userPrompt string, handler advisor.ToolHandler) (advisor.Result, error)
}

// Gateway is the subset of the gateway client the planner uses.
type Gateway interface {
	Sensors(ctx context.Context) (gateway.SensorSnapshot, error)
	Status(ctx context.Context) (gateway.Status, error)
}

// Telemetry receives optional run metrics. May be nil.
type Telemetry interface {
	WriteRunResult(component string, outcome string, actions int, duration time.Duration)
}

// Outcome classifies a completed planning cycle.
type Outcome string

const (
	OutcomeSelfLocked    Outcome = "skipped_self_lockout"
	OutcomeGatewayLocked Outcome = "skipped_gateway_lockout"
	OutcomePlanned       Outcome = "planned"
	OutcomeNoPlan        Outcome = "no_plan"
)

// Result reports what a cycle produced.
type Result struct {
	Outcome Outcome
	Actions int
}

// defaultHorizon is the plan validity window when the config leaves it zero.
const defaultHorizon = time.Hour

// Runner is the Forecast Planner: the slow, consultative layer that
// turns advisory output into a validated plan document for the
// executor.
type Runner struct {
	cfg        config.PlannerConfig
	limits     plan.Limits
	temps      config.TemperatureConfig
	latitude   float64
	longitude  float64
	location   *time.Location
	promptPath string
	adv        Advisor
	gw         Gateway
	store      *state.Store
	repo       journal.Repository
	telemetry  Telemetry
	logger     Logger
	now        func() time.Time
}

// New creates a planner runner.
//
// Parameters:
//   - cfg: Planner settings (advisor connection, horizon, history depth)
//   - control: Shared limits for action validation
//   - site: Location for sun calculations
//   - loc: Local timezone
//   - adv: Advisory exchange client
//   - gw: Gateway client backing the advisor's read-only tools
//   - store: State store holding the plan and lockout documents
//   - repo: Decision journal
//   - telemetry: Optional metrics sink (nil for none)
//   - logger: Logger (nil for no logging)
func New(cfg config.PlannerConfig, control config.ControlConfig, site config.SiteConfig, loc *time.Location, adv Advisor, gw Gateway, store *state.Store, repo journal.Repository, telemetry Telemetry, logger Logger) *Runner {
	if logger == nil {
		logger = noopLogger{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{
		cfg: cfg,
		limits: plan.Limits{
			ChannelMax:     control.ChannelMax,
			MaxDurationSec: control.MaxActionDuration,
		},
		temps:      control.Temperature,
		latitude:   site.Location.Latitude,
		longitude:  site.Location.Longitude,
		location:   loc,
		promptPath: cfg.SystemPromptPath,
		adv:        adv,
		gw:         gw,
		store:      store,
		repo:       repo,
		telemetry:  telemetry,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs one planning cycle.
//
// A cycle under either lockout produces nothing at all: planning while
// locked would bake stale conditions into an hour of guidance. When the
// advisory response carries no parseable plan the cycle also produces
// no plan document, leaving any still-valid previous plan authoritative,
// but the exchange is journalled either way. A new plan is always a
// full overwrite with validity anchored to its generation time.
//
// Returns:
//   - Result: Outcome and the number of accepted actions
//   - error: Advisory/Gateway failure terminating the cycle
func (r *Runner) Run(ctx context.Context) (Result, error) {
	started := r.now().In(r.location)

	lockout, err := state.LoadLockout(r.store)
	if err != nil {
		r.logger.Warn("lockout state unreadable, treating as unlocked", "error", err)
	}
	if lockout.Locked(started) {
		r.logger.Info("self-lockout active, skipping cycle", "locked_until", lockout.LockedUntil)
		return r.finish(started, Result{Outcome: OutcomeSelfLocked}), nil
	}

	status, err := r.gw.Status(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetching gateway status: %w", err)
	}
	if status.LockedOut {
		r.logger.Info("hardware override lockout active, skipping cycle")
		return r.finish(started, Result{Outcome: OutcomeGatewayLocked}), nil
	}

	history := r.history(ctx)
	sun := suncalc.Calculate(r.latitude, r.longitude, started)

	exchange, err := r.adv.Consult(ctx, r.systemPrompt(), userPrompt(started, sun, r.temps, history), &toolHandler{gw: r.gw})
	if err != nil {
		return Result{}, fmt.Errorf("advisory exchange: %w", err)
	}

	res, entry := r.buildPlan(started, exchange)

	if r.repo != nil {
		entry.Timestamp = started.UTC()
		if err := r.repo.Append(ctx, entry.Truncate()); err != nil {
			r.logger.Error("appending journal entry", "error", err)
		}
	}

	return r.finish(started, res), nil
}

// buildPlan extracts, validates and persists the plan, and prepares the
// journal entry describing the cycle.
func (r *Runner) buildPlan(now time.Time, exchange advisor.Result) (Result, *journal.Entry) {
	entry := &journal.Entry{
		RawResponse:    exchange.Raw,
		SensorSnapshot: exchange.Snapshot,
	}

	raw := advisor.ExtractJSON(exchange.Text)
	if raw == "" {
		r.logger.Warn("advisory response carried no plan document")
		entry.Summary = "no plan: response carried no JSON document"
		return Result{Outcome: OutcomeNoPlan}, entry
	}

	payload, err := plan.DecodePayload([]byte(raw))
	if err != nil {
		r.logger.Warn("advisory plan rejected", "error", err)
		entry.Summary = "no plan: " + err.Error()
		return Result{Outcome: OutcomeNoPlan}, entry
	}

	actions := plan.ValidateActions(payload.Actions, r.limits, r.location, r.logger)

	horizon := defaultHorizon
	if r.cfg.HorizonMinutes > 0 {
		horizon = time.Duration(r.cfg.HorizonMinutes) * time.Minute
	}

	p := &plan.Plan{
		GeneratedAt:   now,
		ValidUntil:    now.Add(horizon),
		Summary:       payload.Summary,
		Actions:       actions,
		CO2Advisory:   payload.CO2Advisory,
		DewpointRisk:  payload.DewpointRisk,
		NextCheckNote: payload.NextCheckNote,
	}
	if err := plan.Save(r.store, p); err != nil {
		r.logger.Error("saving plan", "error", err)
		entry.Summary = "no plan: persist failed"
		return Result{Outcome: OutcomeNoPlan}, entry
	}

	r.logger.Info("plan written",
		"actions", len(actions), "dropped", len(payload.Actions)-len(actions),
		"valid_until", p.ValidUntil)

	entry.Summary = payload.Summary
	if taken, err := json.Marshal(actions); err == nil {
		entry.ActionsTaken = string(taken)
	}

	return Result{Outcome: OutcomePlanned, Actions: len(actions)}, entry
}

// history loads the recent journal entries; a read failure degrades to
// planning without memory.
func (r *Runner) history(ctx context.Context) []journal.Entry {
	if r.repo == nil {
		return nil
	}
	n := r.cfg.HistoryCount
	if n <= 0 {
		n = 3
	}
	entries, err := r.repo.Recent(ctx, n)
	if err != nil {
		r.logger.Warn("journal history unavailable", "error", err)
		return nil
	}
	return entries
}

func (r *Runner) finish(started time.Time, res Result) Result {
	if r.telemetry != nil {
		r.telemetry.WriteRunResult("forecast", string(res.Outcome), res.Actions, r.now().Sub(started))
	}
	return res
}

// toolHandler backs the advisor's read-only tools with the Gateway.
type toolHandler struct {
	gw Gateway
}

func (h *toolHandler) GetSensors(ctx context.Context) (string, error) {
	snapshot, err := h.gw.Sensors(ctx)
	if err != nil {
		return "", err
	}
	if len(snapshot.Raw) > 0 {
		return string(snapshot.Raw), nil
	}
	data, err := json.Marshal(snapshot.Sensors)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (h *toolHandler) GetStatus(ctx context.Context) (string, error) {
	status, err := h.gw.Status(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(status)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
