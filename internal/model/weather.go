package model

// Location is a resolved place. Two locations are the same city when Name and Country match exactly.
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type WeatherDescriptor struct {
	ID          int    `json:"id,omitempty"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentConditions is the normalized current-weather reading, metric units.
type CurrentConditions struct {
	Temp       float64             `json:"temp"`
	FeelsLike  float64             `json:"feels_like"`
	Humidity   int                 `json:"humidity"`
	Pressure   int                 `json:"pressure"`
	Visibility *int                `json:"visibility"`
	WindSpeed  float64             `json:"wind_speed"`
	WindGust   *float64            `json:"wind_gust"`
	Weather    []WeatherDescriptor `json:"weather"`
}

// ForecastSample is one 3-hour forecast point. Pop is the probability of precipitation, 0..1.
type ForecastSample struct {
	Dt      int64               `json:"dt"`
	Temp    float64             `json:"temp"`
	Pop     float64             `json:"pop"`
	Weather []WeatherDescriptor `json:"weather"`
}

type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DailySummary is synthesized from the 3-hour samples of one UTC calendar date.
type DailySummary struct {
	Dt      int64               `json:"dt"`
	Temp    TempRange           `json:"temp"`
	Pop     float64             `json:"pop"`
	Weather []WeatherDescriptor `json:"weather"`
}

// Dashboard is everything a single search returns.
type Dashboard struct {
	Location   Location          `json:"location"`
	Current    CurrentConditions `json:"current"`
	Hourly     []ForecastSample  `json:"hourly"`
	Daily      []DailySummary    `json:"daily"`
	Alerts     []Alert           `json:"alerts"`
	AirQuality AirQuality        `json:"air_quality"`
	Token      uint64            `json:"token,omitempty"`
}
