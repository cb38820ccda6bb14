package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PatientStatus is the aggregate condition derived from recent alerts.
type PatientStatus string

const (
	StatusStable   PatientStatus = "stable"
	StatusWarning  PatientStatus = "warning"
	StatusCritical PatientStatus = "critical"
)

// CareTeamRole distinguishes the two assignment slots on a patient.
type CareTeamRole string

const (
	CareTeamRoleDoctor    CareTeamRole = "doctor"
	CareTeamRoleCaretaker CareTeamRole = "caretaker"
)

// AssignmentFactors is the per-factor breakdown recorded alongside an
// assignment so the selection is auditable.
type AssignmentFactors struct {
	SpecializationPoints int      `json:"specializationPoints,omitempty"`
	MatchedConditions    []string `json:"matchedConditions,omitempty"`
	PreferredMatch       bool     `json:"preferredMatch,omitempty"`
	CertificationPoints  int      `json:"certificationPoints,omitempty"`
	ExperienceTierPoints int      `json:"experienceTierPoints,omitempty"`
	AvailabilityPoints   int      `json:"availabilityPoints"`
	WorkloadPoints       float64  `json:"workloadPoints"`
	ExperiencePoints     float64  `json:"experiencePoints"`
}

// AssignmentReason captures why a provider was selected. Overwritten
// on reassignment.
type AssignmentReason struct {
	Score      float64           `json:"score"`
	Role       CareTeamRole      `json:"role"`
	Factors    AssignmentFactors `json:"factors"`
	AssignedBy string            `json:"assignedBy"`
	Timestamp  time.Time         `json:"timestamp"`
}

// PatientProfile holds the clinical state of a patient user. Created
// at patient signup, mutated by assignment and escalation, never
// deleted.
type PatientProfile struct {
	BaseModel
	UserID string        `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Status PatientStatus `gorm:"size:20;default:'stable'" json:"status"`

	ChronicConditions     []string `gorm:"-" json:"chronicConditions"`
	ChronicConditionsJSON string   `gorm:"column:chronic_conditions;type:text" json:"-"`

	AssignedDoctorID     *string `gorm:"size:36;index" json:"assignedDoctorId,omitempty"`
	AssignedCaretakerID  *string `gorm:"size:36;index" json:"assignedCaretakerId,omitempty"`
	AssignmentReasonJSON string  `gorm:"column:assignment_reason;type:text" json:"-"`

	AutoEscalateToDoctor bool       `gorm:"default:false" json:"autoEscalateToDoctor"`
	EscalatedAt          *time.Time `json:"escalatedAt,omitempty"`
	EscalatedFrom        *string    `gorm:"size:36" json:"escalatedFrom,omitempty"`
	EscalationReason     string     `gorm:"size:255" json:"escalationReason,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeSave serializes the chronic condition list.
func (p *PatientProfile) BeforeSave(tx *gorm.DB) error {
	if p.ChronicConditions == nil {
		p.ChronicConditionsJSON = "[]"
		return nil
	}
	data, err := json.Marshal(p.ChronicConditions)
	if err != nil {
		return err
	}
	p.ChronicConditionsJSON = string(data)
	return nil
}

// AfterFind restores the chronic condition list.
func (p *PatientProfile) AfterFind(tx *gorm.DB) error {
	if p.ChronicConditionsJSON == "" {
		p.ChronicConditions = nil
		return nil
	}
	return json.Unmarshal([]byte(p.ChronicConditionsJSON), &p.ChronicConditions)
}

// SetAssignmentReason stores the serialized selection record.
func (p *PatientProfile) SetAssignmentReason(reason AssignmentReason) error {
	data, err := json.Marshal(reason)
	if err != nil {
		return err
	}
	p.AssignmentReasonJSON = string(data)
	return nil
}

// GetAssignmentReason returns the stored selection record, or nil if
// none was recorded yet.
func (p *PatientProfile) GetAssignmentReason() (*AssignmentReason, error) {
	if p.AssignmentReasonJSON == "" {
		return nil, nil
	}
	var reason AssignmentReason
	if err := json.Unmarshal([]byte(p.AssignmentReasonJSON), &reason); err != nil {
		return nil, err
	}
	return &reason, nil
}

// AssignedID returns the provider assigned for the given role slot.
func (p *PatientProfile) AssignedID(role CareTeamRole) *string {
	if role == CareTeamRoleDoctor {
		return p.AssignedDoctorID
	}
	return p.AssignedCaretakerID
}
