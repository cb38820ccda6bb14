package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vitalwatch-server/internal/apperr"
	"vitalwatch-server/internal/config"
	"vitalwatch-server/internal/models"
)

// InvitationService manages the caretaker/doctor invitation
// lifecycle. Accepted invitations link the responder into the
// sender's care team; expired pending ones are removed by the daily
// sweep without ever transitioning.
type InvitationService struct {
	DB     *gorm.DB
	Logger *zap.Logger
	Cfg    config.CareConfig
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(db *gorm.DB, logger *zap.Logger, cfg config.CareConfig) *InvitationService {
	return &InvitationService{DB: db, Logger: logger, Cfg: cfg}
}

// Send creates a pending invitation from the sender to the recipient
// email.
func (s *InvitationService) Send(senderID, recipientEmail string, invType models.InvitationType, message string) (*models.Invitation, error) {
	if recipientEmail == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "recipientEmail is required")
	}
	if invType != models.InvitationTypeCaretaker && invType != models.InvitationTypeDoctor {
		return nil, apperr.Newf(apperr.CodeInvalidArgument, "Invalid invitation type %q", invType)
	}

	invitation := models.Invitation{
		SenderID:       senderID,
		RecipientEmail: recipientEmail,
		Type:           invType,
		Status:         models.InvitationStatusPending,
		Message:        message,
		ExpiresAt:      time.Now().AddDate(0, 0, s.Cfg.InvitationTTLDays),
	}
	if err := s.DB.Create(&invitation).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to create invitation")
	}

	s.Logger.Info("invitation sent",
		zap.String("invitationId", invitation.ID),
		zap.String("type", string(invType)),
	)
	return &invitation, nil
}

// RespondAction is the recipient's decision.
type RespondAction string

const (
	RespondAccept  RespondAction = "accept"
	RespondDecline RespondAction = "decline"
)

// Respond handles an accept or decline by the invitation recipient.
// Acceptance links the responder into the sender's care team. An
// expired invitation fails with FailedPrecondition and stays pending
// until the sweep removes it.
func (s *InvitationService) Respond(actorID, invitationID string, action RespondAction) error {
	if action != RespondAccept && action != RespondDecline {
		return apperr.Newf(apperr.CodeInvalidArgument, "Invalid action %q", action)
	}

	var invitation models.Invitation
	if err := s.DB.First(&invitation, "id = ?", invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "Invitation not found")
		}
		return apperr.Internal(err, "Failed to load invitation")
	}

	var actor models.User
	if err := s.DB.First(&actor, "id = ?", actorID).Error; err != nil {
		return apperr.Internal(err, "Failed to load responding user")
	}
	if actor.Email != invitation.RecipientEmail {
		return apperr.New(apperr.CodePermissionDenied, "Only the invited recipient can respond to this invitation")
	}

	if invitation.Status != models.InvitationStatusPending {
		return apperr.Newf(apperr.CodeFailedPrecondition, "Invitation has already been %s", invitation.Status)
	}
	if invitation.Expired(time.Now()) {
		return apperr.New(apperr.CodeFailedPrecondition, "Invitation has expired")
	}

	if action == RespondDecline {
		if err := s.DB.Model(&invitation).Update("status", models.InvitationStatusDeclined).Error; err != nil {
			return apperr.Internal(err, "Failed to update invitation")
		}
		return notify(s.DB, invitation.SenderID, "Invitation Declined",
			fmt.Sprintf("%s declined your %s invitation", actor.FullName(), invitation.Type),
			models.SeverityLow)
	}

	expectedRole := models.RoleCaretaker
	slot := models.CareTeamRoleCaretaker
	if invitation.Type == models.InvitationTypeDoctor {
		expectedRole = models.RoleMedical
		slot = models.CareTeamRoleDoctor
	}
	if actor.Role != expectedRole {
		return apperr.Newf(apperr.CodeFailedPrecondition, "A %s invitation requires a user with the %s role", invitation.Type, expectedRole)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invitation).Update("status", models.InvitationStatusAccepted).Error; err != nil {
			return apperr.Internal(err, "Failed to update invitation")
		}

		// The sender is the patient whose care team the responder
		// joins. Reassignment overwrites any previous assignee.
		var profile models.PatientProfile
		err := tx.Where("user_id = ?", invitation.SenderID).First(&profile).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.CodeFailedPrecondition, "Invitation sender has no patient profile")
			}
			return apperr.Internal(err, "Failed to load sender profile")
		}

		if slot == models.CareTeamRoleDoctor {
			profile.AssignedDoctorID = &actor.ID
		} else {
			profile.AssignedCaretakerID = &actor.ID
		}
		if err := tx.Save(&profile).Error; err != nil {
			return apperr.Internal(err, "Failed to link care team member")
		}

		return notify(tx, invitation.SenderID, "Invitation Accepted",
			fmt.Sprintf("%s accepted your %s invitation", actor.FullName(), invitation.Type),
			models.SeverityLow)
	})
}

// SweepExpired deletes invitations that are still pending past their
// expiry. Returns the number of rows removed.
func (s *InvitationService) SweepExpired(now time.Time) (int64, error) {
	result := s.DB.Where("status = ? AND expires_at < ?", models.InvitationStatusPending, now).
		Delete(&models.Invitation{})
	if result.Error != nil {
		return 0, apperr.Internal(result.Error, "Failed to sweep expired invitations")
	}
	if result.RowsAffected > 0 {
		s.Logger.Info("expired invitations removed", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}
