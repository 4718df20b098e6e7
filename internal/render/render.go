// Package render turns the widget's input and result into a View and writes the page.
package render

import (
	"github.com/kjstillabower/weather-widget/internal/country"
	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/units"
)

// LoadingMessage is shown while no result is loaded.
const LoadingMessage = "Loading...."

// DefaultIconBaseURL is prefixed to the condition icon code.
const DefaultIconBaseURL = "http://openweathermap.org/img/w/"

// View is everything the page shows. Loaded fields are empty while Loading is true.
type View struct {
	Input          string `json:"input"`
	Loading        bool   `json:"loading"`
	LoadingMessage string `json:"loadingMessage,omitempty"`
	Temperature    string `json:"temperature,omitempty"`
	TempMin        string `json:"tempMin,omitempty"`
	TempMax        string `json:"tempMax,omitempty"`
	IconURL        string `json:"iconUrl,omitempty"`
	Description    string `json:"description,omitempty"`
	Conditions     string `json:"conditions,omitempty"`
	Location       string `json:"location,omitempty"`
	Country        string `json:"country,omitempty"`
}

// Render is a pure function of its inputs. A result without main readings renders as
// loading, whatever else it carries.
func Render(input string, result models.WeatherResult, iconBaseURL string) View {
	if !result.Loaded() {
		return View{Input: input, Loading: true, LoadingMessage: LoadingMessage}
	}
	if iconBaseURL == "" {
		iconBaseURL = DefaultIconBaseURL
	}

	v := View{
		Input:       input,
		Temperature: units.FormatFahrenheit(result.Main.Temp),
		TempMin:     units.FormatFahrenheit(result.Main.TempMin),
		TempMax:     units.FormatFahrenheit(result.Main.TempMax),
		Location:    result.Name,
		Country:     country.Name(result.CountryCode()),
	}
	c := result.PrimaryCondition()
	v.Description = c.Description
	v.Conditions = c.Main
	if c.Icon != "" {
		v.IconURL = iconBaseURL + c.Icon + ".png"
	}
	return v
}
