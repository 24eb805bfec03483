// Package aqi converts raw pollutant concentrations into a standard
// 0-500 Air Quality Index with a category label and display color.
package aqi

import (
	"errors"
	"fmt"
	"math"
)

// Conversion errors.
var (
	// ErrInvalidConcentration is returned for negative or non-finite input.
	ErrInvalidConcentration = errors.New("invalid pollutant concentration")
)

// Level is an AQI health category label.
type Level string

const (
	LevelGood          Level = "Good"
	LevelModerate      Level = "Moderate"
	LevelSensitive     Level = "Unhealthy for Sensitive Groups"
	LevelUnhealthy     Level = "Unhealthy"
	LevelVeryUnhealthy Level = "Very Unhealthy"
	LevelHazardous     Level = "Hazardous"
)

// Concentrations holds pollutant mass concentrations in µg/m³ as reported
// by the upstream provider. NO and NH3 may be absent (zero).
type Concentrations struct {
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}

// Result is the converted standard AQI value for one observation.
// AQI is the rounded maximum of the per-pollutant sub-indices; Level,
// Description and Color are derived from AQI via a fixed partition.
type Result struct {
	AQI         int    `json:"aqi"`
	Level       Level  `json:"level"`
	Description string `json:"description"`
	Color       string `json:"color"`

	// SourceAQI is the provider's native 1-5 scale, kept for traceability.
	// It does not influence the computed AQI.
	SourceAQI int `json:"openWeatherAqi"`
}

// breakpoint maps a concentration range [CLow, CHigh] to an AQI
// sub-index range [ILow, IHigh].
type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

// EPA-style breakpoint tables. O3 uses a simplified µg/m³ proxy for the
// ppm-based federal table.
var (
	pm25Breakpoints = []breakpoint{
		{0, 12.0, 0, 50},
		{12.1, 35.4, 51, 100},
		{35.5, 55.4, 101, 150},
		{55.5, 150.4, 151, 200},
		{150.5, 250.4, 201, 300},
		{250.5, 350.4, 301, 400},
		{350.5, 500.0, 401, 500},
	}

	pm10Breakpoints = []breakpoint{
		{0, 54, 0, 50},
		{55, 154, 51, 100},
		{155, 254, 101, 150},
		{255, 354, 151, 200},
		{355, 500, 201, 300},
	}

	o3Breakpoints = []breakpoint{
		{0, 108, 0, 50},
		{108.1, 140, 51, 100},
		{140.1, 170, 101, 150},
		{170.1, 210, 151, 200},
		{210.1, 400, 201, 300},
	}
)

// category pairs an upper AQI bound with its label, description and color.
// Ordered ascending; first match wins. The last entry is open-ended.
var categories = []struct {
	max         int
	level       Level
	description string
	color       string
}{
	{50, LevelGood, "Air quality is satisfactory, and air pollution poses little or no risk.", "green"},
	{100, LevelModerate, "Air quality is acceptable. However, there may be a risk for some people.", "yellow"},
	{150, LevelSensitive, "Members of sensitive groups may experience health effects.", "orange"},
	{200, LevelUnhealthy, "Some members of the general public may experience health effects.", "red"},
	{300, LevelVeryUnhealthy, "Health alert: the risk of health effects is increased for everyone.", "purple"},
	{math.MaxInt32, LevelHazardous, "Health warning of emergency conditions: everyone is more likely to be affected.", "maroon"},
}

// linearScale maps v from the source range [lo, hi] to the target range
// [tlo, thi] by linear interpolation.
func linearScale(v, lo, hi, tlo, thi float64) float64 {
	return tlo + (v-lo)*(thi-tlo)/(hi-lo)
}

// subIndex computes the AQI sub-index for a concentration via its
// breakpoint table. Concentrations above the last breakpoint extrapolate
// at the final segment's slope rather than failing.
func subIndex(concentration float64, table []breakpoint) (float64, error) {
	if math.IsNaN(concentration) || math.IsInf(concentration, 0) || concentration < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConcentration, concentration)
	}

	for _, bp := range table {
		if concentration <= bp.cHigh {
			return linearScale(concentration, bp.cLow, bp.cHigh, bp.iLow, bp.iHigh), nil
		}
	}

	last := table[len(table)-1]
	rate := (last.iHigh - last.iLow) / (last.cHigh - last.cLow)
	return last.iHigh + (concentration-last.cHigh)*rate, nil
}

// SubIndexPM25 returns the PM2.5 sub-index for a concentration in µg/m³.
func SubIndexPM25(concentration float64) (float64, error) {
	return subIndex(concentration, pm25Breakpoints)
}

// SubIndexPM10 returns the PM10 sub-index for a concentration in µg/m³.
func SubIndexPM10(concentration float64) (float64, error) {
	return subIndex(concentration, pm10Breakpoints)
}

// SubIndexO3 returns the O3 sub-index for a concentration in µg/m³.
func SubIndexO3(concentration float64) (float64, error) {
	return subIndex(concentration, o3Breakpoints)
}

// Categorize returns the level, description and color for an AQI value.
// The partition is total over [0, ∞); callers must not pass negatives.
func Categorize(value int) (Level, string, string) {
	for _, cat := range categories {
		if value <= cat.max {
			return cat.level, cat.description, cat.color
		}
	}
	last := categories[len(categories)-1]
	return last.level, last.description, last.color
}

// Convert derives the standard AQI result from the provider's native 1-5
// index and raw concentrations. Pure and deterministic; the only failure
// mode is malformed numeric input, which is never silently coerced.
func Convert(sourceAQI int, c Concentrations) (Result, error) {
	pm25, err := SubIndexPM25(c.PM25)
	if err != nil {
		return Result{}, fmt.Errorf("pm2_5: %w", err)
	}

	pm10, err := SubIndexPM10(c.PM10)
	if err != nil {
		return Result{}, fmt.Errorf("pm10: %w", err)
	}

	o3, err := SubIndexO3(c.O3)
	if err != nil {
		return Result{}, fmt.Errorf("o3: %w", err)
	}

	value := math.Round(math.Max(pm25, math.Max(pm10, o3)))

	result := Result{
		AQI:       int(value),
		SourceAQI: sourceAQI,
	}
	result.Level, result.Description, result.Color = Categorize(result.AQI)

	return result, nil
}
