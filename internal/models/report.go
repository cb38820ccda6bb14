package models

import (
	"time"
)

// DailyReport summarizes one patient's prior calendar day. Generated
// by the scheduled report job.
type DailyReport struct {
	BaseModel
	PatientID    string        `gorm:"size:36;index;not null" json:"patientId"`
	ReportDate   time.Time     `gorm:"index" json:"reportDate"`
	ReadingCount int           `json:"readingCount"`
	AlertsLow    int           `json:"alertsLow"`
	AlertsMedium int           `json:"alertsMedium"`
	AlertsHigh   int           `json:"alertsHigh"`
	Status       PatientStatus `gorm:"size:20" json:"status"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}
