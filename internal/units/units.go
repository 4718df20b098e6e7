package units

import (
	"math"
	"strconv"
)

// KelvinToFahrenheit converts k to whole degrees Fahrenheit, rounding half away from zero.
// Values in (-0.5, 0) °F print as "0", deliberately unlike a plain fixed-point formatter,
// which prints "-0" for them.
func KelvinToFahrenheit(k float64) string {
	f := math.Round((k-273.15)*1.8 + 32)
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}

// FormatFahrenheit renders k as a display string such as "80° F".
func FormatFahrenheit(k float64) string {
	return KelvinToFahrenheit(k) + "° F"
}
