package care

import (
	"fmt"

	"vitalwatch-server/internal/models"
)

// AlertCandidate is one anomaly detected in a reading, before it is
// persisted as an Alert.
type AlertCandidate struct {
	Title    string
	Message  string
	Severity models.Severity
}

// Classify evaluates a vitals reading against the thresholds and
// returns the alert candidates it produces, in a stable order (heart
// rate, blood pressure, oxygen, temperature, glucose). Each vital is
// evaluated independently, so one reading can fire several alerts. A
// missing vital never produces a candidate. The function is pure and
// total: identical input always yields identical output.
func Classify(reading *models.VitalsReading, t Thresholds) []AlertCandidate {
	var candidates []AlertCandidate

	if hr := reading.HeartRate; hr != nil {
		switch {
		case *hr > t.HeartRateHighSevere:
			candidates = append(candidates, AlertCandidate{
				Title:    "High Heart Rate",
				Message:  fmt.Sprintf("Heart rate of %.0f bpm is critically elevated", *hr),
				Severity: models.SeverityHigh,
			})
		case *hr > t.HeartRateHighMedium:
			candidates = append(candidates, AlertCandidate{
				Title:    "High Heart Rate",
				Message:  fmt.Sprintf("Heart rate of %.0f bpm is above the normal range", *hr),
				Severity: models.SeverityMedium,
			})
		case *hr < t.HeartRateLowSevere:
			candidates = append(candidates, AlertCandidate{
				Title:    "Low Heart Rate",
				Message:  fmt.Sprintf("Heart rate of %.0f bpm is critically low", *hr),
				Severity: models.SeverityHigh,
			})
		case *hr < t.HeartRateLowMedium:
			candidates = append(candidates, AlertCandidate{
				Title:    "Low Heart Rate",
				Message:  fmt.Sprintf("Heart rate of %.0f bpm is below the normal range", *hr),
				Severity: models.SeverityMedium,
			})
		}
	}

	if c := classifyBloodPressure(reading.BloodPressureSys, reading.BloodPressureDia, t); c != nil {
		candidates = append(candidates, *c)
	}

	if ox := reading.OxygenLevel; ox != nil {
		switch {
		case *ox < t.OxygenLowSevere:
			candidates = append(candidates, AlertCandidate{
				Title:    "Low Oxygen Saturation",
				Message:  fmt.Sprintf("Oxygen saturation of %.0f%% is critically low", *ox),
				Severity: models.SeverityHigh,
			})
		case *ox < t.OxygenLow:
			candidates = append(candidates, AlertCandidate{
				Title:    "Low Oxygen Saturation",
				Message:  fmt.Sprintf("Oxygen saturation of %.0f%% is below the normal range", *ox),
				Severity: models.SeverityMedium,
			})
		}
	}

	if temp := reading.Temperature; temp != nil {
		switch {
		case *temp > t.TemperatureHighSevere:
			candidates = append(candidates, AlertCandidate{
				Title:    "High Temperature",
				Message:  fmt.Sprintf("Body temperature of %.1f°C indicates a high fever", *temp),
				Severity: models.SeverityHigh,
			})
		case *temp > t.TemperatureHigh:
			candidates = append(candidates, AlertCandidate{
				Title:    "High Temperature",
				Message:  fmt.Sprintf("Body temperature of %.1f°C is elevated", *temp),
				Severity: models.SeverityMedium,
			})
		case *temp < t.TemperatureLow:
			candidates = append(candidates, AlertCandidate{
				Title:    "Low Temperature",
				Message:  fmt.Sprintf("Body temperature of %.1f°C is below the normal range", *temp),
				Severity: models.SeverityMedium,
			})
		}
	}

	if gl := reading.Glucose; gl != nil {
		switch {
		case *gl > t.GlucoseHighSevere:
			candidates = append(candidates, AlertCandidate{
				Title:    "High Blood Glucose",
				Message:  fmt.Sprintf("Blood glucose of %.0f mg/dL is critically elevated", *gl),
				Severity: models.SeverityHigh,
			})
		case *gl > t.GlucoseHigh:
			candidates = append(candidates, AlertCandidate{
				Title:    "High Blood Glucose",
				Message:  fmt.Sprintf("Blood glucose of %.0f mg/dL is above the normal range", *gl),
				Severity: models.SeverityMedium,
			})
		case *gl < t.GlucoseLowSevere:
			candidates = append(candidates, AlertCandidate{
				Title:    "Low Blood Glucose",
				Message:  fmt.Sprintf("Blood glucose of %.0f mg/dL is critically low", *gl),
				Severity: models.SeverityHigh,
			})
		case *gl < t.GlucoseLow:
			candidates = append(candidates, AlertCandidate{
				Title:    "Low Blood Glucose",
				Message:  fmt.Sprintf("Blood glucose of %.0f mg/dL is below the normal range", *gl),
				Severity: models.SeverityMedium,
			})
		}
	}

	return candidates
}

// classifyBloodPressure treats systolic and diastolic as one vital:
// either component can push the reading into the elevated or low band,
// and only a systolic crossing of the severe boundary raises the
// severity to high. The elevated band wins if both bands are crossed
// at once (for example high systolic with low diastolic).
func classifyBloodPressure(sys, dia *float64, t Thresholds) *AlertCandidate {
	if sys == nil && dia == nil {
		return nil
	}

	elevated := (sys != nil && *sys > t.SystolicHigh) || (dia != nil && *dia > t.DiastolicHigh)
	low := (sys != nil && *sys < t.SystolicLow) || (dia != nil && *dia < t.DiastolicLow)

	switch {
	case elevated:
		severity := models.SeverityMedium
		msg := fmt.Sprintf("Blood pressure of %s mmHg is above the normal range", formatBP(sys, dia))
		if sys != nil && *sys > t.SystolicHighSevere {
			severity = models.SeverityHigh
			msg = fmt.Sprintf("Blood pressure of %s mmHg is critically elevated", formatBP(sys, dia))
		}
		return &AlertCandidate{Title: "High Blood Pressure", Message: msg, Severity: severity}
	case low:
		return &AlertCandidate{
			Title:    "Low Blood Pressure",
			Message:  fmt.Sprintf("Blood pressure of %s mmHg is below the normal range", formatBP(sys, dia)),
			Severity: models.SeverityMedium,
		}
	}
	return nil
}

func formatBP(sys, dia *float64) string {
	s, d := "-", "-"
	if sys != nil {
		s = fmt.Sprintf("%.0f", *sys)
	}
	if dia != nil {
		d = fmt.Sprintf("%.0f", *dia)
	}
	return s + "/" + d
}
