package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
)

// newTestClient points a client at a httptest server.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(config.GatewayConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5,
	}, nil)

	return client, srv
}

// =============================================================================
// Sensors Tests
// =============================================================================

func TestSensors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sensors" {
			t.Errorf("path = %q, want /api/sensors", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("X-API-Key = %q, want test-key", got)
		}
		w.Write([]byte(`{
			"sensors": {
				"house/climate/air_temp": {"value": 26.4, "unit": "C"},
				"farm/weather/station": {"rainfall": 1.5, "wind_speed_ms": 6.2, "wind_direction": 3}
			}
		}`))
	})

	snapshot, err := client.Sensors(context.Background())
	if err != nil {
		t.Fatalf("Sensors() error = %v", err)
	}

	temp, ok := snapshot.Value("house/climate/air_temp")
	if !ok || temp != 26.4 {
		t.Errorf("Value(air_temp) = %v, %v, want 26.4, true", temp, ok)
	}

	if _, ok := snapshot.Value("house/climate/co2"); ok {
		t.Error("Value() for absent source = true, want false")
	}

	weather := snapshot.Weather()
	if weather.Rainfall != 1.5 {
		t.Errorf("Weather().Rainfall = %v, want 1.5", weather.Rainfall)
	}
	if weather.WindSpeedMS != 6.2 {
		t.Errorf("Weather().WindSpeedMS = %v, want 6.2", weather.WindSpeedMS)
	}
	if weather.WindDirection != 3 {
		t.Errorf("Weather().WindDirection = %v, want 3", weather.WindDirection)
	}

	if len(snapshot.Raw) == 0 {
		t.Error("Raw body not retained")
	}
}

func TestSensorsAliasKeys(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"sensors": {
				"farm/weather/station": {"rainfall_mm": 0.8, "wind_speed": 3.1}
			}
		}`))
	})

	snapshot, err := client.Sensors(context.Background())
	if err != nil {
		t.Fatalf("Sensors() error = %v", err)
	}

	weather := snapshot.Weather()
	if weather.Rainfall != 0.8 {
		t.Errorf("Weather().Rainfall = %v, want 0.8 via rainfall_mm alias", weather.Rainfall)
	}
	if weather.WindSpeedMS != 3.1 {
		t.Errorf("Weather().WindSpeedMS = %v, want 3.1 via wind_speed alias", weather.WindSpeedMS)
	}
	if weather.WindDirection != 0 {
		t.Errorf("Weather().WindDirection = %v, want 0 for absent direction", weather.WindDirection)
	}
}

func TestSensorsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.Sensors(context.Background())
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("Sensors() error = %v, want ErrRequestFailed", err)
	}
}

// =============================================================================
// Status Tests
// =============================================================================

func TestStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("path = %q, want /api/status", r.URL.Path)
		}
		w.Write([]byte(`{"locked_out": true, "relay_state": {"4": true, "5": false}}`))
	})

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if !status.LockedOut {
		t.Error("LockedOut = false, want true")
	}

	on, ok := status.RelayOn(4)
	if !ok || !on {
		t.Errorf("RelayOn(4) = %v, %v, want true, true", on, ok)
	}
	if _, ok := status.RelayOn(7); ok {
		t.Error("RelayOn(7) = present, want absent")
	}
}

func TestStatusServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Status(context.Background())
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Status() error = %v, want ErrUnexpectedStatus", err)
	}
}

// =============================================================================
// SetRelay Tests
// =============================================================================

func TestSetRelay(t *testing.T) {
	var gotPath string
	var gotCmd RelayCommand

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotCmd); err != nil {
			t.Fatalf("decoding command: %v", err)
		}
		w.Write([]byte(`{"ok": true}`))
	})

	err := client.SetRelay(context.Background(), 4, RelayCommand{
		Value:       1,
		DurationSec: 270,
		Reason:      "solar irrigation",
	})
	if err != nil {
		t.Fatalf("SetRelay() error = %v", err)
	}

	if gotPath != "/api/relay/4" {
		t.Errorf("path = %q, want /api/relay/4", gotPath)
	}
	if gotCmd.Value != 1 || gotCmd.DurationSec != 270 || gotCmd.Reason != "solar irrigation" {
		t.Errorf("command = %+v, want value=1 duration=270", gotCmd)
	}
}

func TestSetRelayLockedOut(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusLocked)
	})

	err := client.SetRelay(context.Background(), 5, RelayCommand{Value: 1})
	if !errors.Is(err, ErrLockedOut) {
		t.Errorf("SetRelay() error = %v, want ErrLockedOut", err)
	}
}

func TestSetRelayServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.SetRelay(context.Background(), 5, RelayCommand{Value: 0})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("SetRelay() error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestSetRelayUnreachable(t *testing.T) {
	client := New(config.GatewayConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 1,
	}, nil)

	err := client.SetRelay(context.Background(), 5, RelayCommand{Value: 0})
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("SetRelay() error = %v, want ErrRequestFailed", err)
	}
}

// =============================================================================
// ClearEmergency Tests
// =============================================================================

func TestClearEmergency(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	if err := client.ClearEmergency(context.Background()); err != nil {
		t.Fatalf("ClearEmergency() error = %v", err)
	}
	if gotPath != "/api/emergency/clear" {
		t.Errorf("path = %q, want /api/emergency/clear", gotPath)
	}
}
