package plan

import (
	"errors"
	"testing"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/state"
)

// recordingLogger captures warnings for assertion.
type recordingLogger struct {
	infos []string
	warns []string
}

func (l *recordingLogger) Info(msg string, _ ...any) { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warns = append(l.warns, msg) }

func testLimits() Limits {
	return Limits{ChannelMax: 8, MaxDurationSec: 3600}
}

// =============================================================================
// Payload Decode Tests
// =============================================================================

func TestDecodePayload(t *testing.T) {
	data := []byte(`{
		"summary": "ventilate before noon peak",
		"actions": [
			{"execute_at": "2026-08-30T10:30:00+09:00", "channel": 5, "value": 1, "duration_sec": 600, "reason": "pre-peak airflow"}
		],
		"co2_advisory": "levels nominal",
		"dewpoint_risk": "low",
		"next_check_note": "watch wind after 14:00"
	}`)

	payload, err := DecodePayload(data)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}

	if payload.Summary != "ventilate before noon peak" {
		t.Errorf("Summary = %q", payload.Summary)
	}
	if len(payload.Actions) != 1 {
		t.Fatalf("Actions count = %d, want 1", len(payload.Actions))
	}
	if payload.DewpointRisk != "low" {
		t.Errorf("DewpointRisk = %q, want low", payload.DewpointRisk)
	}
}

func TestDecodePayloadActionsNotArray(t *testing.T) {
	data := []byte(`{"summary": "bad", "actions": "none"}`)

	_, err := DecodePayload(data)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("DecodePayload() error = %v, want ErrInvalidPayload", err)
	}
}

func TestDecodePayloadMissingActions(t *testing.T) {
	data := []byte(`{"summary": "no actions field"}`)

	_, err := DecodePayload(data)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("DecodePayload() error = %v, want ErrInvalidPayload", err)
	}
}

func TestDecodePayloadNotJSON(t *testing.T) {
	_, err := DecodePayload([]byte("I'll keep the windows as they are."))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("DecodePayload() error = %v, want ErrInvalidPayload", err)
	}
}

// =============================================================================
// Action Validation Tests
// =============================================================================

func TestValidateActions(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name      string
		payload   ActionPayload
		wantKept  bool
		wantWarns int
	}{
		{
			name: "valid action",
			payload: ActionPayload{
				ExecuteAt: "2026-08-30T10:30:00Z", Channel: float64(5), Value: float64(1), DurationSec: float64(600),
			},
			wantKept: true,
		},
		{
			name: "channel zero dropped",
			payload: ActionPayload{
				ExecuteAt: "2026-08-30T10:30:00Z", Channel: float64(0), Value: float64(1),
			},
			wantWarns: 1,
		},
		{
			name: "channel above max dropped",
			payload: ActionPayload{
				ExecuteAt: "2026-08-30T10:30:00Z", Channel: float64(9), Value: float64(1),
			},
			wantWarns: 1,
		},
		{
			name: "channel not a number dropped",
			payload: ActionPayload{
				ExecuteAt: "2026-08-30T10:30:00Z", Channel: "five", Value: float64(1),
			},
			wantWarns: 1,
		},
		{
			name: "fractional channel dropped",
			payload: ActionPayload{
				ExecuteAt: "2026-08-30T10:30:00Z", Channel: 5.5, Value: float64(1),
			},
			wantWarns: 1,
		},
		{
			name: "value not binary dropped",
			payload: ActionPayload{
				ExecuteAt: "2026-08-30T10:30:00Z", Channel: float64(5), Value: float64(2),
			},
			wantWarns: 1,
		},
		{
			name: "negative duration dropped",
			payload: ActionPayload{
				ExecuteAt: "2026-08-30T10:30:00Z", Channel: float64(5), Value: float64(1), DurationSec: float64(-1),
			},
			wantWarns: 1,
		},
		{
			name: "oversized duration clamped not dropped",
			payload: ActionPayload{
				ExecuteAt: "2026-08-30T10:30:00Z", Channel: float64(4), Value: float64(1), DurationSec: float64(7200),
			},
			wantKept:  true,
			wantWarns: 1,
		},
		{
			name: "unparseable timestamp dropped",
			payload: ActionPayload{
				ExecuteAt: "half past ten", Channel: float64(5), Value: float64(1),
			},
			wantWarns: 1,
		},
		{
			name: "missing timestamp dropped",
			payload: ActionPayload{
				Channel: float64(5), Value: float64(1),
			},
			wantWarns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			actions := ValidateActions([]ActionPayload{tt.payload}, testLimits(), loc, logger)

			kept := len(actions) == 1
			if kept != tt.wantKept {
				t.Errorf("kept = %v, want %v", kept, tt.wantKept)
			}
			if len(logger.warns) != tt.wantWarns {
				t.Errorf("warnings = %d, want %d", len(logger.warns), tt.wantWarns)
			}
			if kept && actions[0].Executed != MarkPending {
				t.Errorf("Executed = %q, want %q", actions[0].Executed, MarkPending)
			}
		})
	}
}

func TestValidateActionsClampValue(t *testing.T) {
	actions := ValidateActions([]ActionPayload{{
		ExecuteAt: "2026-08-30T10:30:00Z", Channel: float64(4), Value: float64(1), DurationSec: float64(7200),
	}}, testLimits(), time.UTC, nil)

	if len(actions) != 1 {
		t.Fatalf("actions count = %d, want 1", len(actions))
	}
	if actions[0].DurationSec != 3600 {
		t.Errorf("DurationSec = %d, want clamped 3600", actions[0].DurationSec)
	}
}

func TestValidateActionsNaiveTimestamp(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)

	actions := ValidateActions([]ActionPayload{{
		ExecuteAt: "2026-08-30T10:30:00", Channel: float64(5), Value: float64(0),
	}}, testLimits(), loc, nil)

	if len(actions) != 1 {
		t.Fatalf("actions count = %d, want 1", len(actions))
	}
	want := time.Date(2026, 8, 30, 10, 30, 0, 0, loc)
	if !actions[0].ExecuteAt.Equal(want) {
		t.Errorf("ExecuteAt = %v, want %v in site timezone", actions[0].ExecuteAt, want)
	}
}

func TestValidateActionsKeepsOrder(t *testing.T) {
	payloads := []ActionPayload{
		{ExecuteAt: "2026-08-30T10:00:00Z", Channel: float64(5), Value: float64(1)},
		{ExecuteAt: "2026-08-30T10:15:00Z", Channel: float64(99), Value: float64(1)}, // dropped
		{ExecuteAt: "2026-08-30T10:30:00Z", Channel: float64(6), Value: float64(0)},
	}

	actions := ValidateActions(payloads, testLimits(), time.UTC, nil)
	if len(actions) != 2 {
		t.Fatalf("actions count = %d, want 2", len(actions))
	}
	if actions[0].Channel != 5 || actions[1].Channel != 6 {
		t.Errorf("order = ch%d, ch%d, want ch5, ch6", actions[0].Channel, actions[1].Channel)
	}
}

// =============================================================================
// Plan Store Tests
// =============================================================================

func TestStoreRoundTrip(t *testing.T) {
	store := state.NewStore(t.TempDir())
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	in := &Plan{
		GeneratedAt: now,
		ValidUntil:  now.Add(time.Hour),
		Summary:     "open south windows through midday",
		Actions: []Action{
			{ExecuteAt: now.Add(10 * time.Minute), Channel: 5, Value: 1, DurationSec: 600, Reason: "midday airflow", Executed: MarkPending},
			{ExecuteAt: now.Add(40 * time.Minute), Channel: 4, Value: 1, DurationSec: 270, Reason: "scheduled irrigation", Executed: MarkPending},
		},
		CO2Advisory:   "levels nominal",
		DewpointRisk:  "low",
		NextCheckNote: "reassess at 11:00",
	}

	if err := Save(store, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := Load(store, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out == nil {
		t.Fatal("Load() = nil, want plan")
	}

	if out.Summary != in.Summary || out.CO2Advisory != in.CO2Advisory || out.NextCheckNote != in.NextCheckNote {
		t.Errorf("advisory fields not preserved: %+v", out)
	}
	if len(out.Actions) != 2 {
		t.Fatalf("actions count = %d, want 2", len(out.Actions))
	}
	if out.Actions[0].Channel != 5 || out.Actions[1].Channel != 4 {
		t.Errorf("action order not preserved: %+v", out.Actions)
	}
	if !out.Actions[0].ExecuteAt.Equal(in.Actions[0].ExecuteAt) {
		t.Errorf("ExecuteAt = %v, want %v", out.Actions[0].ExecuteAt, in.Actions[0].ExecuteAt)
	}
}

func TestLoadExpiredPlan(t *testing.T) {
	store := state.NewStore(t.TempDir())
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	p := &Plan{GeneratedAt: now.Add(-2 * time.Hour), ValidUntil: now.Add(-time.Hour)}
	if err := Save(store, p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := Load(store, now)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out != nil {
		t.Error("Load() returned expired plan, want nil")
	}
}

func TestLoadMissingPlan(t *testing.T) {
	store := state.NewStore(t.TempDir())

	out, err := Load(store, time.Now())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out != nil {
		t.Error("Load() = plan for missing file, want nil")
	}
}

// =============================================================================
// Mark Tests
// =============================================================================

func TestMarkTerminal(t *testing.T) {
	if MarkPending.Terminal() {
		t.Error("MarkPending.Terminal() = true, want false")
	}
	if !MarkDone.Terminal() {
		t.Error("MarkDone.Terminal() = false, want true")
	}
	if !MarkSkippedWeather.Terminal() {
		t.Error("MarkSkippedWeather.Terminal() = false, want true")
	}
}

func TestPlanValid(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	p := &Plan{ValidUntil: now}

	if !p.Valid(now) {
		t.Error("Valid() at exact expiry = false, want true")
	}
	if p.Valid(now.Add(time.Second)) {
		t.Error("Valid() past expiry = true, want false")
	}

	var nilPlan *Plan
	if nilPlan.Valid(now) {
		t.Error("nil plan Valid() = true, want false")
	}
}
