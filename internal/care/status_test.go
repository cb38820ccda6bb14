package care

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vitalwatch-server/internal/models"
)

func TestResolveStatus(t *testing.T) {
	high := AlertCandidate{Severity: models.SeverityHigh}
	medium := AlertCandidate{Severity: models.SeverityMedium}
	low := AlertCandidate{Severity: models.SeverityLow}

	tests := []struct {
		name       string
		current    models.PatientStatus
		candidates []AlertCandidate
		want       models.PatientStatus
	}{
		{"high forces critical", models.StatusStable, []AlertCandidate{high}, models.StatusCritical},
		{"medium raises to warning", models.StatusStable, []AlertCandidate{medium}, models.StatusWarning},
		{"medium never downgrades critical", models.StatusCritical, []AlertCandidate{medium}, models.StatusCritical},
		{"high wins over medium in same batch", models.StatusStable, []AlertCandidate{medium, high}, models.StatusCritical},
		{"low alone leaves status untouched", models.StatusStable, []AlertCandidate{low}, models.StatusStable},
		{"no candidates keeps current", models.StatusWarning, nil, models.StatusWarning},
		{"warning stays warning on medium", models.StatusWarning, []AlertCandidate{medium}, models.StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.current, tt.candidates))
		})
	}
}
