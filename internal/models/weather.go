package models

import "encoding/json"

// WeatherResult is the provider's current-weather payload. Every field is optional:
// error bodies ({"cod":"404","message":"city not found"}) decode into the same type
// with Main left nil.
type WeatherResult struct {
	Main    *MainReadings   `json:"main,omitempty"`
	Weather []Condition     `json:"weather,omitempty"`
	Sys     *SysInfo        `json:"sys,omitempty"`
	Name    string          `json:"name,omitempty"`
	Cod     json.RawMessage `json:"cod,omitempty"` // number on success, string on error
	Message string          `json:"message,omitempty"`
}

// MainReadings holds temperatures in Kelvin.
type MainReadings struct {
	Temp    float64 `json:"temp"`
	TempMin float64 `json:"temp_min"`
	TempMax float64 `json:"temp_max"`
}

type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type SysInfo struct {
	Country string `json:"country"`
}

// Loaded reports whether the result carries a main block. A result without one is the
// empty sentinel the renderer shows as loading.
func (r WeatherResult) Loaded() bool {
	return r.Main != nil
}

// PrimaryCondition returns weather[0], or a zero Condition when the array is empty.
func (r WeatherResult) PrimaryCondition() Condition {
	if len(r.Weather) == 0 {
		return Condition{}
	}
	return r.Weather[0]
}

// CountryCode returns sys.country or "" when absent.
func (r WeatherResult) CountryCode() string {
	if r.Sys == nil {
		return ""
	}
	return r.Sys.Country
}
