// Package forecast reshapes the 5-day / 3-hour forecast list into an hourly
// slice and one summary per UTC calendar date.
package forecast

import (
	"sort"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/model"
)

// DefaultHourlyCount is eight 3-hour samples, roughly the next 24 hours.
const DefaultHourlyCount = 8

const noonSeconds = 12 * 3600

// Normalize converts a raw forecast entry into a ForecastSample.
func Normalize(item model.OWMForecastItem) model.ForecastSample {
	weather := item.Weather
	if weather == nil {
		weather = []model.WeatherDescriptor{}
	}
	return model.ForecastSample{
		Dt:      item.Dt,
		Temp:    item.Main.Temp,
		Pop:     item.Pop,
		Weather: weather,
	}
}

// HourlySlice returns the first n entries normalized, without interpolation.
// n <= 0 means DefaultHourlyCount.
func HourlySlice(list []model.OWMForecastItem, n int) []model.ForecastSample {
	if n <= 0 {
		n = DefaultHourlyCount
	}
	if n > len(list) {
		n = len(list)
	}
	out := make([]model.ForecastSample, 0, n)
	for _, item := range list[:n] {
		out = append(out, Normalize(item))
	}
	return out
}

type day struct {
	dt       int64
	min, max float64
	pop      float64
	best     model.ForecastSample
	bestDiff int
}

// DailySummaries groups samples by the UTC date of their timestamp. Each day
// carries the min/max temperature, the highest pop, and the weather of the
// sample closest to 12:00 UTC. On a tie the earlier sample wins.
func DailySummaries(list []model.OWMForecastItem) []model.DailySummary {
	if len(list) == 0 {
		return []model.DailySummary{}
	}

	byDate := make(map[string]*day)
	order := make([]*day, 0, 6)
	for _, item := range list {
		s := Normalize(item)
		t := time.Unix(s.Dt, 0).UTC()
		key := t.Format(time.DateOnly)
		diff := abs(t.Hour()*3600 - noonSeconds)

		d, ok := byDate[key]
		if !ok {
			d = &day{dt: s.Dt, min: s.Temp, max: s.Temp, pop: s.Pop, best: s, bestDiff: diff}
			byDate[key] = d
			order = append(order, d)
			continue
		}
		d.min = min(d.min, s.Temp)
		d.max = max(d.max, s.Temp)
		d.pop = max(d.pop, s.Pop)
		if diff < d.bestDiff {
			d.best, d.bestDiff = s, diff
		}
	}

	out := make([]model.DailySummary, 0, len(order))
	for _, d := range order {
		out = append(out, model.DailySummary{
			Dt:      d.dt,
			Temp:    model.TempRange{Min: d.min, Max: d.max},
			Pop:     d.pop,
			Weather: d.best.Weather,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Dt < out[j].Dt })
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
