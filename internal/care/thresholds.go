// Package care implements the clinical decision logic: vitals anomaly
// classification, patient status resolution, and care-team scoring.
// Everything in this package is pure; persistence and notifications
// live in the services layer.
package care

// Thresholds holds the physiological boundaries used by the anomaly
// classifier. Values are compared strictly (> / <) against readings.
type Thresholds struct {
	HeartRateHighMedium float64 // above -> medium
	HeartRateHighSevere float64 // above -> high
	HeartRateLowMedium  float64 // below -> medium
	HeartRateLowSevere  float64 // below -> high

	SystolicHigh       float64 // above -> medium
	SystolicHighSevere float64 // above -> high
	SystolicLow        float64 // below -> medium
	DiastolicHigh      float64 // above -> medium
	DiastolicLow       float64 // below -> medium

	OxygenLow       float64 // below -> medium
	OxygenLowSevere float64 // below -> high

	TemperatureHigh       float64 // above -> medium (deg C)
	TemperatureHighSevere float64 // above -> high
	TemperatureLow        float64 // below -> medium

	GlucoseHigh       float64 // above -> medium (mg/dL)
	GlucoseHighSevere float64 // above -> high
	GlucoseLow        float64 // below -> medium
	GlucoseLowSevere  float64 // below -> high
}

// DefaultThresholds are the standard adult reference ranges. Tests and
// per-deployment tuning may substitute their own set.
var DefaultThresholds = Thresholds{
	HeartRateHighMedium: 100,
	HeartRateHighSevere: 120,
	HeartRateLowMedium:  60,
	HeartRateLowSevere:  50,

	SystolicHigh:       140,
	SystolicHighSevere: 160,
	SystolicLow:        90,
	DiastolicHigh:      90,
	DiastolicLow:       60,

	OxygenLow:       95,
	OxygenLowSevere: 90,

	TemperatureHigh:       37.5,
	TemperatureHighSevere: 38.5,
	TemperatureLow:        36,

	GlucoseHigh:       180,
	GlucoseHighSevere: 250,
	GlucoseLow:        70,
	GlucoseLowSevere:  54,
}
