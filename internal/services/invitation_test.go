package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vitalwatch-server/internal/apperr"
	"vitalwatch-server/internal/models"
)

func newInvitationService(db *gorm.DB) *InvitationService {
	return NewInvitationService(db, testLogger(), testCareConfig())
}

func reloadInvitation(t *testing.T, db *gorm.DB, id string) *models.Invitation {
	var invitation models.Invitation
	require.NoError(t, db.First(&invitation, "id = ?", id).Error)
	return &invitation
}

func TestSendInvitation(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)
	createPatient(t, db, "p1")

	invitation, err := svc.Send("p1", "caretaker@example.com", models.InvitationTypeCaretaker, "please help")
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusPending, invitation.Status)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), invitation.ExpiresAt, time.Minute)
}

func TestSendInvitation_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)

	_, err := svc.Send("p1", "", models.InvitationTypeCaretaker, "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))

	_, err = svc.Send("p1", "x@example.com", "plumber", "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestRespond_OnlyRecipientMayRespond(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)
	createPatient(t, db, "p1")
	createCaretaker(t, db, "c1", true, 5) // email c1@example.com

	invitation, err := svc.Send("p1", "someone-else@example.com", models.InvitationTypeCaretaker, "")
	require.NoError(t, err)

	err = svc.Respond("c1", invitation.ID, RespondAccept)
	require.Error(t, err)
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))
}

func TestRespond_Decline(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)
	createPatient(t, db, "p1")
	createCaretaker(t, db, "c1", true, 5)

	invitation, err := svc.Send("p1", "c1@example.com", models.InvitationTypeCaretaker, "")
	require.NoError(t, err)

	require.NoError(t, svc.Respond("c1", invitation.ID, RespondDecline))
	assert.Equal(t, models.InvitationStatusDeclined, reloadInvitation(t, db, invitation.ID).Status)
	assert.EqualValues(t, 1, countNotifications(t, db, "p1"))

	// A declined invitation cannot be responded to again.
	err = svc.Respond("c1", invitation.ID, RespondAccept)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeFailedPrecondition, apperr.CodeOf(err))
}

func TestRespond_AcceptLinksCareTeam(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)
	createPatient(t, db, "p1")
	createCaretaker(t, db, "c1", true, 5)

	invitation, err := svc.Send("p1", "c1@example.com", models.InvitationTypeCaretaker, "")
	require.NoError(t, err)

	require.NoError(t, svc.Respond("c1", invitation.ID, RespondAccept))
	assert.Equal(t, models.InvitationStatusAccepted, reloadInvitation(t, db, invitation.ID).Status)

	profile := reloadProfile(t, db, "p1")
	require.NotNil(t, profile.AssignedCaretakerID)
	assert.Equal(t, "c1", *profile.AssignedCaretakerID)
	assert.EqualValues(t, 1, countNotifications(t, db, "p1"))
}

func TestRespond_AcceptDoctorInvitation(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)
	createPatient(t, db, "p1")
	createDoctor(t, db, "d1", "Cardiology", models.AvailabilityAvailable)

	invitation, err := svc.Send("p1", "d1@example.com", models.InvitationTypeDoctor, "")
	require.NoError(t, err)

	require.NoError(t, svc.Respond("d1", invitation.ID, RespondAccept))
	profile := reloadProfile(t, db, "p1")
	require.NotNil(t, profile.AssignedDoctorID)
	assert.Equal(t, "d1", *profile.AssignedDoctorID)
}

func TestRespond_RoleMustMatchType(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)
	createPatient(t, db, "p1")
	createCaretaker(t, db, "c1", true, 5)

	// A doctor invitation sent to a caretaker cannot be accepted.
	invitation, err := svc.Send("p1", "c1@example.com", models.InvitationTypeDoctor, "")
	require.NoError(t, err)

	err = svc.Respond("c1", invitation.ID, RespondAccept)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeFailedPrecondition, apperr.CodeOf(err))
	assert.Equal(t, models.InvitationStatusPending, reloadInvitation(t, db, invitation.ID).Status)
}

func TestRespond_ExpiredStaysPending(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)
	createPatient(t, db, "p1")
	createCaretaker(t, db, "c1", true, 5)

	invitation, err := svc.Send("p1", "c1@example.com", models.InvitationTypeCaretaker, "")
	require.NoError(t, err)
	require.NoError(t, db.Model(invitation).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	err = svc.Respond("c1", invitation.ID, RespondAccept)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeFailedPrecondition, apperr.CodeOf(err))

	// Expired invitations never transition; the sweep removes them.
	assert.Equal(t, models.InvitationStatusPending, reloadInvitation(t, db, invitation.ID).Status)
	assert.Nil(t, reloadProfile(t, db, "p1").AssignedCaretakerID)
}

func TestRespond_NotFoundAndInvalidAction(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)

	err := svc.Respond("c1", "missing", RespondAccept)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	err = svc.Respond("c1", "missing", "maybe")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestSweepExpired(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvitationService(db)
	createPatient(t, db, "p1")

	expired, err := svc.Send("p1", "a@example.com", models.InvitationTypeCaretaker, "")
	require.NoError(t, err)
	require.NoError(t, db.Model(expired).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	live, err := svc.Send("p1", "b@example.com", models.InvitationTypeCaretaker, "")
	require.NoError(t, err)

	accepted, err := svc.Send("p1", "c@example.com", models.InvitationTypeCaretaker, "")
	require.NoError(t, err)
	require.NoError(t, db.Model(accepted).Updates(map[string]interface{}{
		"status":     models.InvitationStatusAccepted,
		"expires_at": time.Now().Add(-time.Hour),
	}).Error)

	removed, err := svc.SweepExpired(time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	// Only the expired pending invitation is gone.
	var remaining []models.Invitation
	require.NoError(t, db.Find(&remaining).Error)
	ids := []string{remaining[0].ID, remaining[1].ID}
	assert.Contains(t, ids, live.ID)
	assert.Contains(t, ids, accepted.ID)
}
