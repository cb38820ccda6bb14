package models

// AuditAction names the recorded operation.
type AuditAction string

const (
	AuditActionAssignment     AuditAction = "care_team_assignment"
	AuditActionAutoEscalation AuditAction = "auto_escalation"
	AuditActionEscalation     AuditAction = "manual_escalation"
)

// AuditLog records who changed a patient's care team and why.
type AuditLog struct {
	BaseModel
	// ActorID is "system" for automatic actions.
	ActorID               string       `gorm:"size:36;index" json:"actorId"`
	PatientID             string       `gorm:"size:36;index;not null" json:"patientId"`
	Action                AuditAction  `gorm:"size:50;not null" json:"action"`
	AssigneeID            string       `gorm:"size:36" json:"assigneeId"`
	Role                  CareTeamRole `gorm:"size:20" json:"role"`
	Score                 float64      `json:"score"`
	MatchedConditionsJSON string       `gorm:"column:matched_conditions;type:text" json:"-"`
	Detail                string       `gorm:"type:text" json:"detail"`
}
