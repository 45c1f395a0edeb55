package alerts

import (
	"testing"

	"github.com/fakhrymubarak/skytrackr/internal/model"
)

func current(temp, wind float64, main string) *model.CurrentConditions {
	return &model.CurrentConditions{
		Temp:      temp,
		WindSpeed: wind,
		Weather:   []model.WeatherDescriptor{{Main: main}},
	}
}

func hourly(pops ...float64) []model.ForecastSample {
	out := make([]model.ForecastSample, 0, len(pops))
	for i, p := range pops {
		out = append(out, model.ForecastSample{Dt: int64(i) * 10800, Pop: p})
	}
	return out
}

func events(alerts []model.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Event)
	}
	return out
}

func TestEvaluate_NoCurrent(t *testing.T) {
	got := Evaluate(Input{Hourly: hourly(1, 1, 1)})
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty alert list, got %v", got)
	}
}

func TestEvaluate_Heat(t *testing.T) {
	tests := []struct {
		temp float64
		want bool
	}{
		{35.0, false},
		{35.1, true},
		{40, true},
		{-5, false},
	}
	for _, tt := range tests {
		got := Evaluate(Input{Current: current(tt.temp, 0, "Clear")})
		fired := len(got) == 1 && got[0].Event == "Heat alert"
		if fired != tt.want {
			t.Errorf("temp %v: heat fired = %v, want %v (%v)", tt.temp, fired, tt.want, events(got))
		}
	}

	got := Evaluate(Input{Current: current(36.6, 0, "Clear")})
	if got[0].Severity != model.SeverityCaution {
		t.Errorf("Expected caution severity, got %s", got[0].Severity)
	}
	if got[0].Description != "Temperature 37°C. Stay hydrated and avoid prolonged exposure." {
		t.Errorf("Unexpected description %q", got[0].Description)
	}
}

func TestEvaluate_Wind(t *testing.T) {
	if got := Evaluate(Input{Current: current(20, 12, "Clear")}); len(got) != 0 {
		t.Errorf("Expected no alert at exactly 12 m/s, got %v", events(got))
	}
	got := Evaluate(Input{Current: current(20, 12.5, "Clear")})
	if len(got) != 1 || got[0].Event != "Strong wind" || got[0].Severity != model.SeverityCaution {
		t.Fatalf("Expected strong wind alert, got %+v", got)
	}
	if got[0].Description != "Wind 13 m/s. Secure loose objects and use caution." {
		t.Errorf("Unexpected description %q", got[0].Description)
	}
}

func TestEvaluate_Rain(t *testing.T) {
	t.Run("raining now with zero pop", func(t *testing.T) {
		got := Evaluate(Input{Current: current(15, 0, "Rain"), Hourly: hourly(0, 0, 0, 0, 0, 0, 0, 0)})
		if len(got) != 1 || got[0].Event != "Carry umbrella" {
			t.Fatalf("Expected umbrella alert, got %v", events(got))
		}
		if got[0].Description != "Rain in the forecast. Consider carrying an umbrella." {
			t.Errorf("Unexpected description %q", got[0].Description)
		}
		if got[0].Severity != model.SeverityInfo {
			t.Errorf("Expected info severity, got %s", got[0].Severity)
		}
	})

	t.Run("drizzle matches case-insensitively", func(t *testing.T) {
		got := Evaluate(Input{Current: current(15, 0, "DRIZZLE")})
		if len(got) != 1 {
			t.Errorf("Expected umbrella alert, got %v", events(got))
		}
	})

	t.Run("clear now but rain chance ahead", func(t *testing.T) {
		got := Evaluate(Input{Current: current(15, 0, "Clear"), Hourly: hourly(0, 0, 0.35, 0.1)})
		if len(got) != 1 {
			t.Fatalf("Expected umbrella alert, got %v", events(got))
		}
		if got[0].Description != "Up to 35% chance of rain in the next 24 hours." {
			t.Errorf("Unexpected description %q", got[0].Description)
		}
	})

	t.Run("pop beyond the first eight samples is ignored", func(t *testing.T) {
		got := Evaluate(Input{Current: current(15, 0, "Clear"), Hourly: hourly(0, 0, 0, 0, 0, 0, 0, 0, 0.9)})
		if len(got) != 0 {
			t.Errorf("Expected no alerts, got %v", events(got))
		}
	})

	t.Run("no weather descriptor", func(t *testing.T) {
		got := Evaluate(Input{Current: &model.CurrentConditions{Temp: 10}})
		if len(got) != 0 {
			t.Errorf("Expected no alerts, got %v", events(got))
		}
	})
}

func TestEvaluate_AllRulesIndependent(t *testing.T) {
	got := Evaluate(Input{Current: current(38, 15, "Light Rain"), Hourly: hourly(0.8)})
	want := []string{"Heat alert", "Strong wind", "Carry umbrella"}
	gotEvents := events(got)
	if len(gotEvents) != len(want) {
		t.Fatalf("Expected %v, got %v", want, gotEvents)
	}
	for i := range want {
		if gotEvents[i] != want[i] {
			t.Errorf("alert %d: expected %s, got %s", i, want[i], gotEvents[i])
		}
	}
}
