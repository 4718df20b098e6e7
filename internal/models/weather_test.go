package models

import (
	"encoding/json"
	"testing"
)

// TestWeatherResult_DecodeSuccessBody verifies that a provider success payload decodes
// into a loaded result with the nested fields populated.
func TestWeatherResult_DecodeSuccessBody(t *testing.T) {
	body := `{"coord":{"lon":-117.82,"lat":33.68},"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}],
"main":{"temp":300,"feels_like":299.5,"temp_min":295,"temp_max":305,"pressure":1012,"humidity":40},
"sys":{"country":"US"},"name":"Irvine","cod":200}`

	var r WeatherResult
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !r.Loaded() {
		t.Fatal("Loaded() = false, want true")
	}
	if r.Main.Temp != 300 || r.Main.TempMin != 295 || r.Main.TempMax != 305 {
		t.Errorf("Main = %+v, want temps 300/295/305", *r.Main)
	}
	if c := r.PrimaryCondition(); c.Icon != "01d" || c.Main != "Clear" || c.Description != "clear sky" {
		t.Errorf("PrimaryCondition() = %+v", c)
	}
	if r.CountryCode() != "US" {
		t.Errorf("CountryCode() = %q, want US", r.CountryCode())
	}
	if r.Name != "Irvine" {
		t.Errorf("Name = %q, want Irvine", r.Name)
	}
}

// TestWeatherResult_DecodeErrorBody verifies that a provider error body, whose cod is a
// string, decodes without error and stays in the empty (not loaded) state.
func TestWeatherResult_DecodeErrorBody(t *testing.T) {
	var r WeatherResult
	if err := json.Unmarshal([]byte(`{"cod":"404","message":"city not found"}`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.Loaded() {
		t.Error("Loaded() = true for error body, want false")
	}
	if r.Message != "city not found" {
		t.Errorf("Message = %q", r.Message)
	}
}

// TestWeatherResult_EmptyAccessors verifies the accessors on an empty result.
func TestWeatherResult_EmptyAccessors(t *testing.T) {
	var r WeatherResult
	if r.Loaded() {
		t.Error("zero WeatherResult should not be loaded")
	}
	if c := r.PrimaryCondition(); c != (Condition{}) {
		t.Errorf("PrimaryCondition() = %+v, want zero", c)
	}
	if r.CountryCode() != "" {
		t.Errorf("CountryCode() = %q, want empty", r.CountryCode())
	}

	var nullMain WeatherResult
	if err := json.Unmarshal([]byte(`{"main":null}`), &nullMain); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if nullMain.Loaded() {
		t.Error(`{"main":null} should not be loaded`)
	}
}
