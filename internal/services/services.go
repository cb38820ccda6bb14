// Package services orchestrates the care engine over the persistence
// layer: assignment, escalation, vitals ingestion, invitations, and
// the scheduled maintenance work.
package services

import (
	"errors"

	"gorm.io/gorm"

	"vitalwatch-server/internal/apperr"
	"vitalwatch-server/internal/models"
)

// loadPatientWithProfile fetches a patient user and their profile,
// translating missing rows into NotFound.
func loadPatientWithProfile(db *gorm.DB, patientID string) (*models.User, *models.PatientProfile, error) {
	if patientID == "" {
		return nil, nil, apperr.New(apperr.CodeInvalidArgument, "patientId is required")
	}

	var patient models.User
	if err := db.Where("id = ? AND role = ?", patientID, models.RolePatient).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.CodeNotFound, "Patient not found")
		}
		return nil, nil, apperr.Internal(err, "Failed to load patient")
	}

	var profile models.PatientProfile
	if err := db.Where("user_id = ?", patientID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.CodeNotFound, "Patient profile not found")
		}
		return nil, nil, apperr.Internal(err, "Failed to load patient profile")
	}

	return &patient, &profile, nil
}

// isCareTeamMember reports whether the actor is the patient themself
// or one of the currently assigned providers.
func isCareTeamMember(profile *models.PatientProfile, actorID string) bool {
	if actorID == profile.UserID {
		return true
	}
	for _, role := range []models.CareTeamRole{models.CareTeamRoleCaretaker, models.CareTeamRoleDoctor} {
		if id := profile.AssignedID(role); id != nil && *id == actorID {
			return true
		}
	}
	return false
}

// notify writes one fan-out record. Delivery happens outside the core.
func notify(tx *gorm.DB, recipientID, title, message string, severity models.Severity) error {
	notification := models.Notification{
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Severity:    severity,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return apperr.Internal(err, "Failed to write notification")
	}
	return nil
}
