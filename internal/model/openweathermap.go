package model

// OWMMain is the "main" block shared by the current-weather and forecast payloads.
type OWMMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
	SeaLevel  int     `json:"sea_level"`
	GrndLevel int     `json:"grnd_level"`
}

type OWMWind struct {
	Speed float64  `json:"speed"`
	Deg   int      `json:"deg"`
	Gust  *float64 `json:"gust"`
}

type OWMCoord struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// OpenWeatherMapResponse is the /data/2.5/weather payload.
type OpenWeatherMapResponse struct {
	Name       string              `json:"name"`
	Coord      OWMCoord            `json:"coord"`
	Main       OWMMain             `json:"main"`
	Wind       OWMWind             `json:"wind"`
	Visibility *int                `json:"visibility"`
	Weather    []WeatherDescriptor `json:"weather"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// OWMForecastItem is one entry of the /data/2.5/forecast list.
type OWMForecastItem struct {
	Dt      int64               `json:"dt"`
	Main    OWMMain             `json:"main"`
	Pop     float64             `json:"pop"`
	Weather []WeatherDescriptor `json:"weather"`
	DtTxt   string              `json:"dt_txt,omitempty"`
}

type OWMForecastCity struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Timezone int    `json:"timezone"`
}

// OWMForecastResponse is the 5-day / 3-hour forecast payload.
type OWMForecastResponse struct {
	List []OWMForecastItem `json:"list"`
	City OWMForecastCity   `json:"city"`
}

// OWMGeocodeResult is one entry of the /geo/1.0/direct and /geo/1.0/reverse payloads.
type OWMGeocodeResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type OWMAirPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
	} `json:"list"`
}

// NewsResponse is the top-headlines payload. Articles is nil when the field is absent.
type NewsResponse struct {
	Articles []Article `json:"articles"`
}
