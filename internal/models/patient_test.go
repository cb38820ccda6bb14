package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestAssignedID(t *testing.T) {
	profile := PatientProfile{
		AssignedDoctorID:    strPtr("doc-1"),
		AssignedCaretakerID: strPtr("care-1"),
	}

	doctorID := profile.AssignedID(CareTeamRoleDoctor)
	require.NotNil(t, doctorID)
	assert.Equal(t, "doc-1", *doctorID)

	caretakerID := profile.AssignedID(CareTeamRoleCaretaker)
	require.NotNil(t, caretakerID)
	assert.Equal(t, "care-1", *caretakerID)

	empty := PatientProfile{}
	assert.Nil(t, empty.AssignedID(CareTeamRoleDoctor))
	assert.Nil(t, empty.AssignedID(CareTeamRoleCaretaker))
}

func TestAssignmentReasonRoundTrip(t *testing.T) {
	profile := PatientProfile{}
	reason := AssignmentReason{
		Score:      150,
		Role:       CareTeamRoleDoctor,
		AssignedBy: "p1",
		Timestamp:  time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, profile.SetAssignmentReason(reason))

	loaded, err := profile.GetAssignmentReason()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 150.0, loaded.Score)
	assert.Equal(t, CareTeamRoleDoctor, loaded.Role)
	assert.Equal(t, "p1", loaded.AssignedBy)
}

func TestGetAssignmentReason_Empty(t *testing.T) {
	profile := PatientProfile{}
	reason, err := profile.GetAssignmentReason()
	require.NoError(t, err)
	assert.Nil(t, reason)
}

func TestGetAssignmentReason_CorruptData(t *testing.T) {
	profile := PatientProfile{AssignmentReasonJSON: "{not json"}
	reason, err := profile.GetAssignmentReason()
	assert.Error(t, err)
	assert.Nil(t, reason)
}
