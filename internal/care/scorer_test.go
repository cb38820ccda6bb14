package care

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitalwatch-server/internal/models"
)

func doctor(id, specialization string, years int, availability models.Availability) models.User {
	return models.User{
		BaseModel:       models.BaseModel{ID: id},
		Role:            models.RoleMedical,
		Specialization:  specialization,
		YearsInPractice: years,
		Availability:    availability,
		MaxPatients:     50,
	}
}

func caretaker(id string, certified bool, years int, availability models.Availability) models.User {
	return models.User{
		BaseModel:       models.BaseModel{ID: id},
		Role:            models.RoleCaretaker,
		Certified:       certified,
		ExperienceYears: years,
		Availability:    availability,
		MaxPatients:     50,
	}
}

func TestScoreCandidates_SpecializationMatch(t *testing.T) {
	pool := []Candidate{
		{Provider: doctor("a", "Cardiology", 0, models.AvailabilityOffline)},
	}
	profile := MatchProfile{ChronicConditions: []string{"Hypertension"}, Urgency: UrgencyRoutine}

	scored := ScoreCandidates(models.CareTeamRoleDoctor, pool, profile)
	require.Len(t, scored, 1)

	// 100 specialization + 50 workload, nothing else.
	assert.Equal(t, 100, scored[0].Factors.SpecializationPoints)
	assert.Equal(t, []string{"Hypertension"}, scored[0].Factors.MatchedConditions)
	assert.Equal(t, 150.0, scored[0].Score)
}

func TestScoreCandidates_GeneralistMatchesAnyCondition(t *testing.T) {
	pool := []Candidate{
		{Provider: doctor("a", "Family Medicine", 0, models.AvailabilityOffline)},
	}
	profile := MatchProfile{ChronicConditions: []string{"Gout", "Insomnia"}, Urgency: UrgencyRoutine}

	scored := ScoreCandidates(models.CareTeamRoleDoctor, pool, profile)
	require.Len(t, scored, 1)
	assert.Equal(t, 200, scored[0].Factors.SpecializationPoints)
	assert.Equal(t, []string{"Gout", "Insomnia"}, scored[0].Factors.MatchedConditions)
}

func TestScoreCandidates_ConditionCountedOnce(t *testing.T) {
	// "Diabetic heart disease" matches cardiology via "heart"; the
	// doctor's specialization only matches one map entry, and the
	// condition must not be double counted regardless.
	pool := []Candidate{
		{Provider: doctor("a", "Cardiology and Endocrinology", 0, models.AvailabilityOffline)},
	}
	profile := MatchProfile{ChronicConditions: []string{"Diabetic heart disease"}, Urgency: UrgencyRoutine}

	scored := ScoreCandidates(models.CareTeamRoleDoctor, pool, profile)
	require.Len(t, scored, 1)
	assert.Equal(t, 100, scored[0].Factors.SpecializationPoints)
	assert.Equal(t, []string{"Diabetic heart disease"}, scored[0].Factors.MatchedConditions)
}

func TestScoreCandidates_PreferredSpecialization(t *testing.T) {
	pool := []Candidate{
		{Provider: doctor("a", "Pediatric Cardiology", 0, models.AvailabilityOffline)},
	}
	profile := MatchProfile{PreferredSpecialization: "cardiology", Urgency: UrgencyRoutine}

	scored := ScoreCandidates(models.CareTeamRoleDoctor, pool, profile)
	require.Len(t, scored, 1)
	assert.True(t, scored[0].Factors.PreferredMatch)
	assert.Equal(t, 150.0, scored[0].Score) // 100 preferred + 50 workload
}

func TestScoreCandidates_Availability(t *testing.T) {
	tests := []struct {
		name         string
		availability models.Availability
		urgency      Urgency
		want         int
	}{
		{"available routine", models.AvailabilityAvailable, UrgencyRoutine, 50},
		{"available urgent", models.AvailabilityAvailable, UrgencyUrgent, 50},
		{"busy routine", models.AvailabilityBusy, UrgencyRoutine, 0},
		{"busy urgent", models.AvailabilityBusy, UrgencyUrgent, 25},
		{"offline urgent", models.AvailabilityOffline, UrgencyUrgent, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := []Candidate{{Provider: doctor("a", "", 0, tt.availability)}}
			scored := ScoreCandidates(models.CareTeamRoleDoctor, pool, MatchProfile{Urgency: tt.urgency})
			require.Len(t, scored, 1)
			assert.Equal(t, tt.want, scored[0].Factors.AvailabilityPoints)
		})
	}
}

func TestScoreCandidates_WorkloadDecay(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		want  float64
	}{
		{"empty panel", 0, 50},
		{"half full", 25, 25},
		{"at capacity", 50, 0},
		{"over capacity", 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := []Candidate{{
				Provider:     doctor("a", "", 0, models.AvailabilityOffline),
				PatientCount: tt.count,
			}}
			scored := ScoreCandidates(models.CareTeamRoleDoctor, pool, MatchProfile{Urgency: UrgencyRoutine})
			require.Len(t, scored, 1)
			assert.Equal(t, tt.want, scored[0].Factors.WorkloadPoints)
		})
	}
}

func TestScoreCandidates_ExperienceCapped(t *testing.T) {
	pool := []Candidate{
		{Provider: doctor("a", "", 10, models.AvailabilityOffline)},
		{Provider: doctor("b", "", 30, models.AvailabilityOffline)},
	}
	scored := ScoreCandidates(models.CareTeamRoleDoctor, pool, MatchProfile{Urgency: UrgencyRoutine})
	require.Len(t, scored, 2)

	byID := map[string]ScoredCandidate{}
	for _, s := range scored {
		byID[s.Provider.ID] = s
	}
	assert.Equal(t, 12.5, byID["a"].Factors.ExperiencePoints)
	assert.Equal(t, 25.0, byID["b"].Factors.ExperiencePoints) // capped
}

func TestScoreCandidates_CaretakerFactors(t *testing.T) {
	tests := []struct {
		name      string
		certified bool
		years     int
		wantCert  int
		wantTier  int
	}{
		{"certified senior", true, 6, 50, 30},
		{"uncertified mid", false, 3, 0, 15},
		{"uncertified junior", false, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := []Candidate{{Provider: caretaker("a", tt.certified, tt.years, models.AvailabilityOffline)}}
			scored := ScoreCandidates(models.CareTeamRoleCaretaker, pool, MatchProfile{Urgency: UrgencyRoutine})
			require.Len(t, scored, 1)
			assert.Equal(t, tt.wantCert, scored[0].Factors.CertificationPoints)
			assert.Equal(t, tt.wantTier, scored[0].Factors.ExperienceTierPoints)
			// Specialization never applies to caretakers.
			assert.Zero(t, scored[0].Factors.SpecializationPoints)
		})
	}
}

func TestScoreCandidates_TieBreakByID(t *testing.T) {
	pool := []Candidate{
		{Provider: doctor("bbb", "", 0, models.AvailabilityAvailable)},
		{Provider: doctor("aaa", "", 0, models.AvailabilityAvailable)},
		{Provider: doctor("ccc", "", 0, models.AvailabilityAvailable)},
	}
	scored := ScoreCandidates(models.CareTeamRoleDoctor, pool, MatchProfile{Urgency: UrgencyRoutine})
	require.Len(t, scored, 3)
	assert.Equal(t, "aaa", scored[0].Provider.ID)
	assert.Equal(t, "bbb", scored[1].Provider.ID)
	assert.Equal(t, "ccc", scored[2].Provider.ID)
}

func TestFastDoctorScore(t *testing.T) {
	tests := []struct {
		name       string
		doc        models.User
		conditions []string
		want       int
		ok         bool
	}{
		{"offline excluded", doctor("a", "Cardiology", 0, models.AvailabilityOffline), nil, 0, false},
		{"available base", doctor("a", "", 0, models.AvailabilityAvailable), nil, 100, true},
		{"busy base", doctor("a", "", 0, models.AvailabilityBusy), nil, 50, true},
		{"condition bonus", doctor("a", "Asthma clinic", 0, models.AvailabilityAvailable), []string{"Asthma"}, 200, true},
		{"bonus applied once", doctor("a", "Asthma clinic", 0, models.AvailabilityAvailable), []string{"Asthma", "asthma attacks"}, 200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FastDoctorScore(tt.doc, tt.conditions)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
