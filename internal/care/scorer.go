package care

import (
	"sort"
	"strings"

	"vitalwatch-server/internal/models"
)

// Urgency qualifies how quickly a patient needs a provider.
type Urgency string

const (
	UrgencyRoutine Urgency = "routine"
	UrgencyUrgent  Urgency = "urgent"
)

// Scoring weights. Each factor is additive and independent.
const (
	specializationMatchPoints = 100
	preferredMatchPoints      = 100
	certificationPoints       = 50
	experienceTierSenior      = 30 // >= 5 years
	experienceTierMid         = 15 // 2-4 years
	availabilityFullPoints    = 50
	availabilityBusyUrgent    = 25
	workloadMaxPoints         = 50.0
	experienceCapPoints       = 25.0
	experiencePerYear         = 1.25
)

// specializationKeywords maps a specialization (matched as a substring
// of the doctor's specialization field) to condition keywords. An
// empty list means the specialization matches any condition, which is
// how the generalist disciplines are handled.
var specializationKeywords = map[string][]string{
	"cardiology":        {"heart", "cardiac", "hypertension", "blood pressure", "cholesterol", "arrhythmia"},
	"endocrinology":     {"diabetes", "thyroid", "glucose", "hormone", "metabolic"},
	"pulmonology":       {"asthma", "copd", "lung", "respiratory", "breathing"},
	"nephrology":        {"kidney", "renal", "dialysis"},
	"neurology":         {"stroke", "epilepsy", "seizure", "migraine", "parkinson", "alzheimer"},
	"gastroenterology":  {"stomach", "liver", "bowel", "crohn", "colitis", "digestive"},
	"rheumatology":      {"arthritis", "lupus", "rheumatic", "joint"},
	"oncology":          {"cancer", "tumor", "lymphoma", "leukemia"},
	"psychiatry":        {"depression", "anxiety", "bipolar", "mental"},
	"family medicine":   {},
	"internal medicine": {},
}

// MatchProfile is the patient side of a scoring run.
type MatchProfile struct {
	ChronicConditions       []string
	PreferredSpecialization string
	Urgency                 Urgency
}

// Candidate pairs a provider with their derived workload.
type Candidate struct {
	Provider     models.User
	PatientCount int64
}

// ScoredCandidate annotates a candidate with its total score and the
// factor breakdown that produced it.
type ScoredCandidate struct {
	Provider models.User
	Score    float64
	Factors  models.AssignmentFactors
}

// ScoreCandidates ranks a provider pool for a patient, highest score
// first. Equal scores are broken by lexicographic provider ID so the
// ranking never depends on store iteration order.
func ScoreCandidates(role models.CareTeamRole, pool []Candidate, profile MatchProfile) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		scored = append(scored, scoreCandidate(role, c, profile))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Provider.ID < scored[j].Provider.ID
	})
	return scored
}

func scoreCandidate(role models.CareTeamRole, c Candidate, profile MatchProfile) ScoredCandidate {
	var factors models.AssignmentFactors
	score := 0.0

	if role == models.CareTeamRoleDoctor {
		points, matched := matchSpecialization(c.Provider.Specialization, profile.ChronicConditions)
		factors.SpecializationPoints = points
		factors.MatchedConditions = matched
		score += float64(points)

		if profile.PreferredSpecialization != "" &&
			substringMatch(c.Provider.Specialization, profile.PreferredSpecialization) {
			factors.PreferredMatch = true
			factors.SpecializationPoints += preferredMatchPoints
			score += preferredMatchPoints
		}
	} else {
		if c.Provider.Certified {
			factors.CertificationPoints = certificationPoints
			score += certificationPoints
		}
		switch {
		case c.Provider.ExperienceYears >= 5:
			factors.ExperienceTierPoints = experienceTierSenior
		case c.Provider.ExperienceYears >= 2:
			factors.ExperienceTierPoints = experienceTierMid
		}
		score += float64(factors.ExperienceTierPoints)
	}

	factors.AvailabilityPoints = availabilityPoints(c.Provider.Availability, profile.Urgency)
	score += float64(factors.AvailabilityPoints)

	factors.WorkloadPoints = workloadPoints(c.PatientCount, c.Provider.EffectiveMaxPatients())
	score += factors.WorkloadPoints

	years := c.Provider.ExperienceYears
	if role == models.CareTeamRoleDoctor {
		years = c.Provider.YearsInPractice
	}
	factors.ExperiencePoints = experiencePoints(years)
	score += factors.ExperiencePoints

	return ScoredCandidate{Provider: c.Provider, Score: score, Factors: factors}
}

// matchSpecialization awards points per chronic condition covered by
// the doctor's specialization. A condition contributes at most once
// even if several map entries match the specialization.
func matchSpecialization(specialization string, conditions []string) (int, []string) {
	specLower := strings.ToLower(specialization)
	if specLower == "" || len(conditions) == 0 {
		return 0, nil
	}

	matchedSet := make(map[string]bool)
	var matched []string
	for key, keywords := range specializationKeywords {
		if !strings.Contains(specLower, key) {
			continue
		}
		for _, condition := range conditions {
			if matchedSet[condition] {
				continue
			}
			if len(keywords) == 0 || containsAnyKeyword(condition, keywords) {
				matchedSet[condition] = true
				matched = append(matched, condition)
			}
		}
	}

	// Keep the matched list in the patient's condition order.
	sort.SliceStable(matched, func(i, j int) bool {
		return indexOf(conditions, matched[i]) < indexOf(conditions, matched[j])
	})
	return len(matched) * specializationMatchPoints, matched
}

func containsAnyKeyword(condition string, keywords []string) bool {
	conditionLower := strings.ToLower(condition)
	for _, kw := range keywords {
		if strings.Contains(conditionLower, kw) {
			return true
		}
	}
	return false
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return len(list)
}

// substringMatch is a case-insensitive containment test in either
// direction.
func substringMatch(a, b string) bool {
	al, bl := strings.ToLower(a), strings.ToLower(b)
	if al == "" || bl == "" {
		return false
	}
	return strings.Contains(al, bl) || strings.Contains(bl, al)
}

func availabilityPoints(availability models.Availability, urgency Urgency) int {
	switch availability {
	case models.AvailabilityAvailable:
		return availabilityFullPoints
	case models.AvailabilityBusy:
		if urgency == UrgencyUrgent {
			return availabilityBusyUrgent
		}
	}
	return 0
}

// workloadPoints decays linearly from full points at zero load to zero
// at (or beyond) capacity.
func workloadPoints(patientCount int64, maxPatients int) float64 {
	points := workloadMaxPoints - (float64(patientCount)/float64(maxPatients))*workloadMaxPoints
	if points < 0 {
		return 0
	}
	return points
}

func experiencePoints(years int) float64 {
	points := float64(years) * experiencePerYear
	if points > experienceCapPoints {
		return experienceCapPoints
	}
	return points
}

// Fast-mode doctor scoring, used by manual escalation. It is a
// deliberately lighter heuristic than ScoreCandidates: offline doctors
// are excluded outright, availability contributes a flat 100/50 base,
// and any chronic condition whose text overlaps the specialization in
// either direction adds 100. Both modes are kept side by side so the
// divergence stays visible and tested instead of drifting apart.
const (
	fastAvailableBase  = 100
	fastBusyBase       = 50
	fastConditionBonus = 100
)

// FastDoctorScore returns the fast-mode score for a doctor, and false
// if the doctor does not qualify at all.
func FastDoctorScore(doctor models.User, conditions []string) (int, bool) {
	if doctor.Availability == models.AvailabilityOffline {
		return 0, false
	}

	score := fastBusyBase
	if doctor.Availability == models.AvailabilityAvailable {
		score = fastAvailableBase
	}

	for _, condition := range conditions {
		if substringMatch(doctor.Specialization, condition) {
			score += fastConditionBonus
			break
		}
	}
	return score, true
}
