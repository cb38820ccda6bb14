package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vitalwatch-server/internal/apperr"
	"vitalwatch-server/internal/care"
	"vitalwatch-server/internal/config"
	"vitalwatch-server/internal/models"
)

// EscalationService moves a patient from caretaker-only to
// doctor-supervised care. Automatic escalation reacts to repeated
// high-severity alerts; manual escalation is requested by the patient
// or their care team. A patient is never automatically demoted.
type EscalationService struct {
	DB     *gorm.DB
	Logger *zap.Logger
	Cfg    config.CareConfig
}

// NewEscalationService creates a new EscalationService.
func NewEscalationService(db *gorm.DB, logger *zap.Logger, cfg config.CareConfig) *EscalationService {
	return &EscalationService{DB: db, Logger: logger, Cfg: cfg}
}

// EscalateResult reports the doctor now supervising the patient.
type EscalateResult struct {
	DoctorID         string `json:"doctorId"`
	DoctorName       string `json:"doctorName"`
	Message          string `json:"message"`
	AlreadyEscalated bool   `json:"alreadyEscalated,omitempty"`
}

// CheckAutoEscalation runs after an alert is recorded. It fires only
// when the patient has a caretaker, no doctor, the auto-escalate flag
// set, and the triggering alert is high severity; escalation then
// requires the configured number of high alerts within the trailing
// window, counting the trigger itself.
func (s *EscalationService) CheckAutoEscalation(profile *models.PatientProfile, alert *models.Alert) (bool, error) {
	if profile.AssignedCaretakerID == nil ||
		profile.AssignedDoctorID != nil ||
		!profile.AutoEscalateToDoctor ||
		alert.Severity != models.SeverityHigh {
		return false, nil
	}

	windowStart := time.Now().Add(-time.Duration(s.Cfg.EscalationWindowHours) * time.Hour)
	var highCount int64
	if err := s.DB.Model(&models.Alert{}).
		Where("patient_id = ? AND severity = ? AND created_at >= ?", profile.UserID, models.SeverityHigh, windowStart).
		Count(&highCount).Error; err != nil {
		return false, apperr.Internal(err, "Failed to count recent alerts")
	}
	if highCount < int64(s.Cfg.EscalationAlertThreshold) {
		return false, nil
	}

	// Simplified doctor selection for the automatic path: the first
	// available doctor, not a full scoring run.
	var doctor models.User
	err := s.DB.Where("role = ? AND availability = ?", models.RoleMedical, models.AvailabilityAvailable).
		Order("id").First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.Logger.Warn("auto-escalation triggered but no doctor is available",
				zap.String("patientId", profile.UserID))
			return false, nil
		}
		return false, apperr.Internal(err, "Failed to find an available doctor")
	}

	reason := fmt.Sprintf("%d high-severity alerts within %d hours (latest: %s)",
		highCount, s.Cfg.EscalationWindowHours, alert.Title)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var current models.PatientProfile
		if err := tx.Where("user_id = ?", profile.UserID).First(&current).Error; err != nil {
			return apperr.Internal(err, "Failed to reload patient profile")
		}
		if current.AssignedDoctorID != nil {
			// A concurrent invocation got here first.
			return nil
		}

		now := time.Now()
		caretakerID := current.AssignedCaretakerID
		current.AssignedDoctorID = &doctor.ID
		current.EscalatedAt = &now
		current.EscalatedFrom = caretakerID
		current.EscalationReason = reason
		if err := tx.Save(&current).Error; err != nil {
			return apperr.Internal(err, "Failed to persist escalation")
		}

		if err := notify(tx, doctor.ID, "Patient Escalated To You",
			fmt.Sprintf("A patient was escalated to doctor-supervised care: %s", reason),
			models.SeverityHigh); err != nil {
			return err
		}
		if caretakerID != nil {
			if err := notify(tx, *caretakerID, "Patient Escalated",
				fmt.Sprintf("Your patient has been escalated to Dr. %s", doctor.FullName()),
				models.SeverityLow); err != nil {
				return err
			}
		}
		if err := notify(tx, profile.UserID, "Doctor Assigned",
			fmt.Sprintf("Dr. %s is now supervising your care", doctor.FullName()),
			models.SeverityLow); err != nil {
			return err
		}

		audit := models.AuditLog{
			ActorID:    "system",
			PatientID:  profile.UserID,
			Action:     models.AuditActionAutoEscalation,
			AssigneeID: doctor.ID,
			Role:       models.CareTeamRoleDoctor,
			Detail:     reason,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return apperr.Internal(err, "Failed to write audit entry")
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.Logger.Info("patient auto-escalated to doctor",
		zap.String("patientId", profile.UserID),
		zap.String("doctorId", doctor.ID),
		zap.Int64("highAlerts", highCount),
	)
	return true, nil
}

// EscalateToDoctor handles a manual escalation request. If a doctor is
// already assigned the call succeeds without changes. Doctor selection
// uses the fast scoring mode rather than the full scorer.
func (s *EscalationService) EscalateToDoctor(actorID, patientID, reason string) (*EscalateResult, error) {
	patient, profile, err := loadPatientWithProfile(s.DB, patientID)
	if err != nil {
		return nil, err
	}

	if !isCareTeamMember(profile, actorID) {
		return nil, apperr.New(apperr.CodePermissionDenied, "Only the patient or their care team can request escalation")
	}

	if profile.AssignedDoctorID != nil {
		var doctor models.User
		if err := s.DB.First(&doctor, "id = ?", *profile.AssignedDoctorID).Error; err != nil {
			return nil, apperr.Internal(err, "Failed to load assigned doctor")
		}
		return &EscalateResult{
			DoctorID:         doctor.ID,
			DoctorName:       doctor.FullName(),
			Message:          "Patient is already under doctor supervision",
			AlreadyEscalated: true,
		}, nil
	}

	var doctors []models.User
	if err := s.DB.Where("role = ?", models.RoleMedical).Order("id").Find(&doctors).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to load doctors")
	}

	var best *models.User
	bestScore := -1
	for i := range doctors {
		score, ok := care.FastDoctorScore(doctors[i], profile.ChronicConditions)
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = &doctors[i]
		}
	}
	if best == nil {
		return nil, apperr.New(apperr.CodeNoAvailableDoctor, "No doctor is currently available for escalation")
	}

	if reason == "" {
		reason = "Escalation requested by care team"
	}

	doctor := *best
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var current models.PatientProfile
		if err := tx.Where("user_id = ?", patientID).First(&current).Error; err != nil {
			return apperr.Internal(err, "Failed to reload patient profile")
		}
		if current.AssignedDoctorID != nil {
			return nil
		}

		now := time.Now()
		caretakerID := current.AssignedCaretakerID
		current.AssignedDoctorID = &doctor.ID
		current.EscalatedAt = &now
		current.EscalatedFrom = caretakerID
		current.EscalationReason = reason
		if err := tx.Save(&current).Error; err != nil {
			return apperr.Internal(err, "Failed to persist escalation")
		}

		if err := notify(tx, doctor.ID, "Patient Escalated To You",
			fmt.Sprintf("%s was escalated to your care: %s", patient.FullName(), reason),
			models.SeverityHigh); err != nil {
			return err
		}
		if caretakerID != nil {
			if err := notify(tx, *caretakerID, "Patient Escalated",
				fmt.Sprintf("%s has been escalated to Dr. %s", patient.FullName(), doctor.FullName()),
				models.SeverityLow); err != nil {
				return err
			}
		}
		if err := notify(tx, patientID, "Doctor Assigned",
			fmt.Sprintf("Dr. %s is now supervising your care", doctor.FullName()),
			models.SeverityLow); err != nil {
			return err
		}

		audit := models.AuditLog{
			ActorID:    actorID,
			PatientID:  patientID,
			Action:     models.AuditActionEscalation,
			AssigneeID: doctor.ID,
			Role:       models.CareTeamRoleDoctor,
			Score:      float64(bestScore),
			Detail:     reason,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return apperr.Internal(err, "Failed to write audit entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("patient escalated to doctor",
		zap.String("patientId", patientID),
		zap.String("doctorId", doctor.ID),
		zap.String("actorId", actorID),
	)

	return &EscalateResult{
		DoctorID:   doctor.ID,
		DoctorName: doctor.FullName(),
		Message:    fmt.Sprintf("Dr. %s has been assigned to the patient", doctor.FullName()),
	}, nil
}
