package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vitalwatch-server/internal/apperr"
	"vitalwatch-server/internal/care"
	"vitalwatch-server/internal/models"
)

// AssignmentService runs the full care-team scorer and persists the
// winning assignment with its notifications and audit trail.
type AssignmentService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(db *gorm.DB, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{DB: db, Logger: logger}
}

// AssignInput carries one assignment request.
type AssignInput struct {
	PatientID               string
	Role                    models.CareTeamRole
	PreferredSpecialization string
	Urgency                 care.Urgency
	AutoEscalate            *bool
}

// AssignResult is the outcome returned to the caller.
type AssignResult struct {
	AssignedID   string                  `json:"assignedId"`
	AssignedName string                  `json:"assignedName"`
	Role         models.CareTeamRole     `json:"role"`
	Reason       models.AssignmentReason `json:"reason"`
	Message      string                  `json:"message"`
}

// AssignCareTeamMember scores every provider of the requested role and
// assigns the best match to the patient. The caller must be the
// patient or the patient's current caretaker. Reassignment repeats the
// scoring and overwrites the previous assignee; there is no
// already-assigned guard.
func (s *AssignmentService) AssignCareTeamMember(actorID string, input AssignInput) (*AssignResult, error) {
	if input.Role != models.CareTeamRoleDoctor && input.Role != models.CareTeamRoleCaretaker {
		return nil, apperr.Newf(apperr.CodeInvalidArgument, "Invalid care team role %q", input.Role)
	}
	if input.Urgency == "" {
		input.Urgency = care.UrgencyRoutine
	}
	if input.Urgency != care.UrgencyRoutine && input.Urgency != care.UrgencyUrgent {
		return nil, apperr.Newf(apperr.CodeInvalidArgument, "Invalid urgency %q", input.Urgency)
	}

	patient, profile, err := loadPatientWithProfile(s.DB, input.PatientID)
	if err != nil {
		return nil, err
	}

	if !s.actorMayAssign(actorID, profile) {
		return nil, apperr.New(apperr.CodePermissionDenied, "Only the patient or their caretaker can manage the care team")
	}

	pool, err := s.candidatePool(input.Role, input.PatientID)
	if err != nil {
		return nil, err
	}

	ranked := care.ScoreCandidates(input.Role, pool, care.MatchProfile{
		ChronicConditions:       profile.ChronicConditions,
		PreferredSpecialization: input.PreferredSpecialization,
		Urgency:                 input.Urgency,
	})
	if len(ranked) == 0 || ranked[0].Score == 0 {
		return nil, apperr.Newf(apperr.CodeNoSuitableCandidate, "No suitable %s is available for this patient", input.Role)
	}

	top := ranked[0]
	reason := models.AssignmentReason{
		Score:      top.Score,
		Role:       input.Role,
		Factors:    top.Factors,
		AssignedBy: "system",
		Timestamp:  time.Now(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-read under the transaction so the check-then-assign
		// sequence is atomic per patient.
		var current models.PatientProfile
		if err := tx.Where("user_id = ?", input.PatientID).First(&current).Error; err != nil {
			return apperr.Internal(err, "Failed to reload patient profile")
		}

		if input.Role == models.CareTeamRoleDoctor {
			current.AssignedDoctorID = &top.Provider.ID
		} else {
			current.AssignedCaretakerID = &top.Provider.ID
			if input.AutoEscalate != nil {
				current.AutoEscalateToDoctor = *input.AutoEscalate
			}
		}
		if err := current.SetAssignmentReason(reason); err != nil {
			return apperr.Internal(err, "Failed to encode assignment reason")
		}
		if err := tx.Save(&current).Error; err != nil {
			return apperr.Internal(err, "Failed to persist assignment")
		}

		if err := notify(tx, top.Provider.ID, "New Patient Assignment",
			fmt.Sprintf("You have been assigned as %s for %s", input.Role, patient.FullName()),
			models.SeverityMedium); err != nil {
			return err
		}
		if err := notify(tx, input.PatientID, "Care Team Updated",
			fmt.Sprintf("%s has been assigned as your %s", top.Provider.FullName(), input.Role),
			models.SeverityLow); err != nil {
			return err
		}

		return writeAssignmentAudit(tx, actorID, input.PatientID, top, input.Role)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("care team member assigned",
		zap.String("patientId", input.PatientID),
		zap.String("assigneeId", top.Provider.ID),
		zap.String("role", string(input.Role)),
		zap.Float64("score", top.Score),
	)

	return &AssignResult{
		AssignedID:   top.Provider.ID,
		AssignedName: top.Provider.FullName(),
		Role:         input.Role,
		Reason:       reason,
		Message:      fmt.Sprintf("%s assigned as %s", top.Provider.FullName(), input.Role),
	}, nil
}

func (s *AssignmentService) actorMayAssign(actorID string, profile *models.PatientProfile) bool {
	if actorID == profile.UserID {
		return true
	}
	return profile.AssignedCaretakerID != nil && *profile.AssignedCaretakerID == actorID
}

// candidatePool loads every provider of the role together with their
// derived workload. The target patient is excluded from the counts so
// that repeating an assignment scores the incumbent identically.
func (s *AssignmentService) candidatePool(role models.CareTeamRole, patientID string) ([]care.Candidate, error) {
	providerRole := models.RoleCaretaker
	assignColumn := "assigned_caretaker_id"
	if role == models.CareTeamRoleDoctor {
		providerRole = models.RoleMedical
		assignColumn = "assigned_doctor_id"
	}

	var providers []models.User
	if err := s.DB.Where("role = ?", providerRole).Find(&providers).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to load provider pool")
	}

	pool := make([]care.Candidate, 0, len(providers))
	for _, provider := range providers {
		var count int64
		if err := s.DB.Model(&models.PatientProfile{}).
			Where(assignColumn+" = ? AND user_id != ?", provider.ID, patientID).
			Count(&count).Error; err != nil {
			return nil, apperr.Internal(err, "Failed to derive provider workload")
		}
		pool = append(pool, care.Candidate{Provider: provider, PatientCount: count})
	}
	return pool, nil
}

func writeAssignmentAudit(tx *gorm.DB, actorID, patientID string, top care.ScoredCandidate, role models.CareTeamRole) error {
	matched, _ := json.Marshal(top.Factors.MatchedConditions)
	audit := models.AuditLog{
		ActorID:               actorID,
		PatientID:             patientID,
		Action:                models.AuditActionAssignment,
		AssigneeID:            top.Provider.ID,
		Role:                  role,
		Score:                 top.Score,
		MatchedConditionsJSON: string(matched),
		Detail: fmt.Sprintf("Assigned %s (%s), matched conditions: %s",
			top.Provider.FullName(), role, strings.Join(top.Factors.MatchedConditions, ", ")),
	}
	if err := tx.Create(&audit).Error; err != nil {
		return apperr.Internal(err, "Failed to write audit entry")
	}
	return nil
}
