package interlock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/gateway"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/state"
)

// fakeGateway serves canned readings and records relay writes.
type fakeGateway struct {
	sensors    map[string]float64
	sensorsErr error
	status     gateway.Status
	statusErr  error
	relayErr   error

	relayCalls []relayCall
}

type relayCall struct {
	channel int
	cmd     gateway.RelayCommand
}

func (g *fakeGateway) Sensors(ctx context.Context) (gateway.SensorSnapshot, error) {
	if g.sensorsErr != nil {
		return gateway.SensorSnapshot{}, g.sensorsErr
	}
	snap := gateway.SensorSnapshot{Sensors: map[string]gateway.Reading{}}
	for source, v := range g.sensors {
		value := v
		snap.Sensors[source] = gateway.Reading{Value: &value}
	}
	return snap, nil
}

func (g *fakeGateway) Status(ctx context.Context) (gateway.Status, error) {
	return g.status, g.statusErr
}

func (g *fakeGateway) SetRelay(ctx context.Context, channel int, cmd gateway.RelayCommand) error {
	if g.relayErr != nil {
		return g.relayErr
	}
	g.relayCalls = append(g.relayCalls, relayCall{channel: channel, cmd: cmd})
	return nil
}

func testConfig() config.InterlockConfig {
	return config.InterlockConfig{
		HighBoundC:        27.0,
		LowBoundC:         8.0,
		Cooldown:          300,
		TemperatureSource: "greenhouse_temp",
		FallbackSource:    "outdoor_temp",
	}
}

func newRunner(t *testing.T, gw Gateway) (*Runner, *state.Store) {
	t.Helper()
	store := state.NewStore(t.TempDir())
	r := New(testConfig(), []int{1, 2, 3, 4}, gw, store, nil, nil, nil)
	return r, store
}

// =============================================================================
// Triggers
// =============================================================================

func TestRunHighTemperatureOpensWindows(t *testing.T) {
	gw := &fakeGateway{sensors: map[string]float64{"greenhouse_temp": 28.5}}
	r, store := newRunner(t, gw)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeOpened {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeOpened)
	}

	if len(gw.relayCalls) != 4 {
		t.Fatalf("relay calls = %d, want 4", len(gw.relayCalls))
	}
	for i, call := range gw.relayCalls {
		if call.channel != i+1 {
			t.Errorf("call %d channel = %d, want %d", i, call.channel, i+1)
		}
		if call.cmd.Value != 1 {
			t.Errorf("call %d value = %d, want 1", i, call.cmd.Value)
		}
	}

	lockout, err := state.LoadLockout(store)
	if err != nil {
		t.Fatalf("LoadLockout() error: %v", err)
	}
	if lockout.LockedUntil == nil || !lockout.LockedUntil.After(time.Now()) {
		t.Error("expected a future locked_until")
	}
	if lockout.LastAction != state.ActionOpen {
		t.Errorf("LastAction = %s, want %s", lockout.LastAction, state.ActionOpen)
	}
	if lockout.LastTemperature != 28.5 {
		t.Errorf("LastTemperature = %v, want 28.5", lockout.LastTemperature)
	}
}

func TestRunLowTemperatureClosesWindows(t *testing.T) {
	gw := &fakeGateway{sensors: map[string]float64{"greenhouse_temp": 5.0}}
	r, _ := newRunner(t, gw)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeClosed {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeClosed)
	}
	for _, call := range gw.relayCalls {
		if call.cmd.Value != 0 {
			t.Errorf("value = %d, want 0", call.cmd.Value)
		}
	}
}

func TestRunBetweenBoundsNoAction(t *testing.T) {
	gw := &fakeGateway{sensors: map[string]float64{"greenhouse_temp": 22.0}}
	r, _ := newRunner(t, gw)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeNoAction {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeNoAction)
	}
	if len(gw.relayCalls) != 0 {
		t.Errorf("relay calls = %d, want 0", len(gw.relayCalls))
	}
}

func TestRunFallbackSource(t *testing.T) {
	gw := &fakeGateway{sensors: map[string]float64{"outdoor_temp": 5.0}}
	r, _ := newRunner(t, gw)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeClosed {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeClosed)
	}
	if res.Temperature != 5.0 {
		t.Errorf("Temperature = %v, want 5.0", res.Temperature)
	}
}

// =============================================================================
// Skips
// =============================================================================

func TestRunSelfLockoutSkips(t *testing.T) {
	gw := &fakeGateway{sensors: map[string]float64{"greenhouse_temp": 30.0}}
	r, store := newRunner(t, gw)

	until := time.Now().Add(2 * time.Minute)
	if err := state.SaveLockout(store, state.LockoutState{
		LockedUntil: &until,
		LastAction:  state.ActionOpen,
	}); err != nil {
		t.Fatalf("SaveLockout() error: %v", err)
	}

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeSelfLocked {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeSelfLocked)
	}
	if len(gw.relayCalls) != 0 {
		t.Errorf("relay calls = %d, want 0", len(gw.relayCalls))
	}
}

func TestRunExpiredLockoutTriggersAgain(t *testing.T) {
	gw := &fakeGateway{sensors: map[string]float64{"greenhouse_temp": 30.0}}
	r, store := newRunner(t, gw)

	until := time.Now().Add(-time.Minute)
	if err := state.SaveLockout(store, state.LockoutState{
		LockedUntil: &until,
		LastAction:  state.ActionOpen,
	}); err != nil {
		t.Fatalf("SaveLockout() error: %v", err)
	}

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeOpened {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeOpened)
	}
}

func TestRunCorruptLockoutTreatedAsUnlocked(t *testing.T) {
	gw := &fakeGateway{sensors: map[string]float64{"greenhouse_temp": 28.5}}
	r, store := newRunner(t, gw)

	path := filepath.Join(store.Dir(), "lockout_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeOpened {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeOpened)
	}
	if len(gw.relayCalls) != 4 {
		t.Errorf("relay calls = %d, want 4", len(gw.relayCalls))
	}

	// The triggered action replaces the unreadable artifact.
	lockout, err := state.LoadLockout(store)
	if err != nil {
		t.Fatalf("LoadLockout() error: %v", err)
	}
	if lockout.LockedUntil == nil {
		t.Error("expected a fresh lockout record")
	}
}

func TestRunGatewayLockoutSkips(t *testing.T) {
	gw := &fakeGateway{
		sensors: map[string]float64{"greenhouse_temp": 30.0},
		status:  gateway.Status{LockedOut: true},
	}
	r, _ := newRunner(t, gw)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeGatewayLocked {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeGatewayLocked)
	}
	if len(gw.relayCalls) != 0 {
		t.Errorf("relay calls = %d, want 0", len(gw.relayCalls))
	}
}

func TestRunRelayLockoutMidRunSkips(t *testing.T) {
	gw := &fakeGateway{
		sensors:  map[string]float64{"greenhouse_temp": 30.0},
		relayErr: gateway.ErrLockedOut,
	}
	r, store := newRunner(t, gw)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Outcome != OutcomeGatewayLocked {
		t.Errorf("Outcome = %s, want %s", res.Outcome, OutcomeGatewayLocked)
	}

	// No lockout written when nothing was actuated.
	lockout, _ := state.LoadLockout(store)
	if lockout.LockedUntil != nil {
		t.Error("expected no lockout record")
	}
}

// =============================================================================
// Failures
// =============================================================================

func TestRunStatusFailureTerminal(t *testing.T) {
	gw := &fakeGateway{statusErr: errors.New("connection refused")}
	r, _ := newRunner(t, gw)

	if _, err := r.Run(context.Background()); err == nil {
		t.Error("expected error on status failure")
	}
}

func TestRunSensorFailureTerminal(t *testing.T) {
	gw := &fakeGateway{sensorsErr: errors.New("timeout")}
	r, _ := newRunner(t, gw)

	if _, err := r.Run(context.Background()); err == nil {
		t.Error("expected error on sensor failure")
	}
}

func TestRunNoTemperatureReading(t *testing.T) {
	gw := &fakeGateway{sensors: map[string]float64{"soil_moisture": 40}}
	r, _ := newRunner(t, gw)

	if _, err := r.Run(context.Background()); err == nil {
		t.Error("expected error when both sources are absent")
	}
}
