package model

// AirQuality is the current air-pollution reading. AQI 0 means no reading.
type AirQuality struct {
	AQI        int                `json:"aqi"`
	Components map[string]float64 `json:"components"`
	Level      *AQILevel          `json:"level,omitempty"`
}

type AQILevel struct {
	Value  int    `json:"value"`
	Label  string `json:"label"`
	Advice string `json:"advice"`
}

var aqiLevels = map[int]AQILevel{
	1: {1, "Good", "Air quality is satisfactory."},
	2: {2, "Fair", "Acceptable; some may be sensitive."},
	3: {3, "Moderate", "Sensitive groups should limit outdoor exertion."},
	4: {4, "Poor", "Unhealthy for sensitive groups."},
	5: {5, "Very Poor", "Unhealthy; consider staying indoors."},
}

// EmptyAirQuality is the reading used when the air-pollution endpoint fails.
func EmptyAirQuality() AirQuality {
	return AirQuality{AQI: 0, Components: map[string]float64{}}
}

// AQILabel describes an AQI on the 1..5 scale, clamping values outside it.
// ok is false when there is no reading.
func AQILabel(aqi int) (level AQILevel, ok bool) {
	if aqi == 0 {
		return AQILevel{}, false
	}
	if aqi < 1 {
		aqi = 1
	}
	if aqi > 5 {
		aqi = 5
	}
	return aqiLevels[aqi], true
}
