package models

import (
	"time"
)

// VitalsReading is one measurement set supplied by a device adapter
// (Bluetooth GATT, platform health API, or manual entry) in canonical
// form. Readings are append-only; absent vitals stay nil.
type VitalsReading struct {
	BaseModel
	PatientID string `gorm:"size:36;index;not null" json:"patientId"`
	DeviceID  string `gorm:"size:100" json:"deviceId"`

	HeartRate        *float64 `json:"heartRate,omitempty"`
	BloodPressureSys *float64 `gorm:"column:bp_systolic" json:"bloodPressureSystolic,omitempty"`
	BloodPressureDia *float64 `gorm:"column:bp_diastolic" json:"bloodPressureDiastolic,omitempty"`
	OxygenLevel      *float64 `json:"oxygenLevel,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"` // degrees Celsius
	Glucose          *float64 `json:"glucose,omitempty"`     // mg/dL
	Respiration      *float64 `json:"respiration,omitempty"`

	RecordedAt time.Time `gorm:"index" json:"timestamp"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// HasAnyVital reports whether at least one measurement is present.
func (r *VitalsReading) HasAnyVital() bool {
	return r.HeartRate != nil || r.BloodPressureSys != nil || r.BloodPressureDia != nil ||
		r.OxygenLevel != nil || r.Temperature != nil || r.Glucose != nil || r.Respiration != nil
}
