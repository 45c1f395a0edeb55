// Package alerts derives advisory messages from current and forecast data
// using fixed thresholds.
package alerts

import (
	"fmt"
	"math"
	"strings"

	"github.com/fakhrymubarak/skytrackr/internal/model"
)

const (
	HeatThreshold = 35.0 // °C, exclusive
	WindThreshold = 12.0 // m/s, exclusive
	rainLookahead = 8
)

type Input struct {
	Current *model.CurrentConditions
	Hourly  []model.ForecastSample
	Daily   []model.DailySummary
}

// Evaluate runs every rule independently and returns the alerts in rule order
// (heat, wind, rain). A nil Current yields no alerts.
func Evaluate(in Input) []model.Alert {
	alerts := []model.Alert{}
	cur := in.Current
	if cur == nil {
		return alerts
	}

	if cur.Temp > HeatThreshold {
		alerts = append(alerts, model.Alert{
			Event:       "Heat alert",
			Description: fmt.Sprintf("Temperature %d°C. Stay hydrated and avoid prolonged exposure.", round(cur.Temp)),
			Severity:    model.SeverityCaution,
		})
	}

	if cur.WindSpeed > WindThreshold {
		alerts = append(alerts, model.Alert{
			Event:       "Strong wind",
			Description: fmt.Sprintf("Wind %d m/s. Secure loose objects and use caution.", round(cur.WindSpeed)),
			Severity:    model.SeverityCaution,
		})
	}

	raining := isRain(cur.Weather)
	maxPop := maxPop(in.Hourly, rainLookahead)
	if raining || maxPop > 0 {
		desc := "Rain in the forecast. Consider carrying an umbrella."
		if !raining {
			desc = fmt.Sprintf("Up to %d%% chance of rain in the next 24 hours.", round(maxPop*100))
		}
		alerts = append(alerts, model.Alert{
			Event:       "Carry umbrella",
			Description: desc,
			Severity:    model.SeverityInfo,
		})
	}

	return alerts
}

func isRain(weather []model.WeatherDescriptor) bool {
	if len(weather) == 0 {
		return false
	}
	main := strings.ToLower(weather[0].Main)
	return strings.Contains(main, "rain") || strings.Contains(main, "drizzle")
}

func maxPop(hourly []model.ForecastSample, n int) float64 {
	if len(hourly) > n {
		hourly = hourly[:n]
	}
	var m float64
	for _, h := range hourly {
		m = math.Max(m, h.Pop)
	}
	return m
}

// round rounds half up.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
