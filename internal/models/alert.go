package models

// Severity grades an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert is an append-only record produced by the anomaly classifier or
// by explicit domain events such as device-originated warnings.
type Alert struct {
	BaseModel
	PatientID string   `gorm:"size:36;index;not null" json:"patientId"`
	Title     string   `gorm:"size:255;not null" json:"title"`
	Message   string   `gorm:"type:text" json:"message"`
	Severity  Severity `gorm:"size:10;index;not null" json:"severity"`
	ReadingID string   `gorm:"size:36" json:"readingId,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}
