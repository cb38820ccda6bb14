package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vitalwatch-server/internal/apperr"
	"vitalwatch-server/internal/care"
	"vitalwatch-server/internal/models"
)

func newVitalsService(db *gorm.DB) *VitalsService {
	escalation := NewEscalationService(db, testLogger(), testCareConfig())
	return NewVitalsService(db, testLogger(), care.DefaultThresholds, escalation)
}

func f(v float64) *float64 { return &v }

func TestIngestReading_ValidatesInput(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)

	_, err := svc.IngestReading(&models.VitalsReading{})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))

	_, err = svc.IngestReading(&models.VitalsReading{PatientID: "p1"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestIngestReading_NormalVitals(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	createPatient(t, db, "p1")

	result, err := svc.IngestReading(&models.VitalsReading{
		PatientID: "p1",
		HeartRate: f(75),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ReadingID)
	assert.Empty(t, result.Alerts)
	assert.Equal(t, models.StatusStable, result.Status)
	assert.False(t, result.Escalated)

	// The reading is stored even without anomalies.
	var count int64
	require.NoError(t, db.Model(&models.VitalsReading{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.EqualValues(t, 0, countNotifications(t, db, "p1"))
}

func TestIngestReading_AnomalyPipeline(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	_, profile := createPatient(t, db, "p1")
	createCaretaker(t, db, "c1", true, 5)
	caretakerID := "c1"
	profile.AssignedCaretakerID = &caretakerID
	require.NoError(t, db.Save(profile).Error)

	result, err := svc.IngestReading(&models.VitalsReading{
		PatientID:   "p1",
		HeartRate:   f(125),
		OxygenLevel: f(93),
	})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 2)
	assert.Equal(t, "High Heart Rate", result.Alerts[0].Title)
	assert.Equal(t, models.SeverityHigh, result.Alerts[0].Severity)
	assert.Equal(t, "Low Oxygen Saturation", result.Alerts[1].Title)
	assert.Equal(t, models.SeverityMedium, result.Alerts[1].Severity)
	assert.Equal(t, models.StatusCritical, result.Status)

	assert.Equal(t, models.StatusCritical, reloadProfile(t, db, "p1").Status)

	// Each alert fans out to the patient and the caretaker.
	assert.EqualValues(t, 2, countNotifications(t, db, "p1"))
	assert.EqualValues(t, 2, countNotifications(t, db, "c1"))

	var alerts []models.Alert
	require.NoError(t, db.Find(&alerts).Error)
	require.Len(t, alerts, 2)
	assert.Equal(t, result.ReadingID, alerts[0].ReadingID)
}

func TestIngestReading_MediumAlertRaisesWarning(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	createPatient(t, db, "p1")

	result, err := svc.IngestReading(&models.VitalsReading{
		PatientID:   "p1",
		OxygenLevel: f(93),
	})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "Low Oxygen Saturation", result.Alerts[0].Title)
	assert.Equal(t, models.SeverityMedium, result.Alerts[0].Severity)
	assert.Equal(t, models.StatusWarning, result.Status)
	assert.Equal(t, models.StatusWarning, reloadProfile(t, db, "p1").Status)
}

func TestIngestReading_DefaultsRecordedAt(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	createPatient(t, db, "p1")

	before := time.Now()
	result, err := svc.IngestReading(&models.VitalsReading{PatientID: "p1", HeartRate: f(70)})
	require.NoError(t, err)

	var reading models.VitalsReading
	require.NoError(t, db.First(&reading, "id = ?", result.ReadingID).Error)
	assert.False(t, reading.RecordedAt.Before(before.Add(-time.Second)))
}

func TestIngestReading_TriggersAutoEscalation(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	_, profile := createPatient(t, db, "p1")
	createCaretaker(t, db, "c1", true, 5)
	createDoctor(t, db, "d1", "Cardiology", models.AvailabilityAvailable)
	caretakerID := "c1"
	profile.AssignedCaretakerID = &caretakerID
	profile.AutoEscalateToDoctor = true
	require.NoError(t, db.Save(profile).Error)

	// A prior high alert inside the window; the new reading makes two.
	highAlert(t, db, "p1", 2*time.Hour)

	result, err := svc.IngestReading(&models.VitalsReading{PatientID: "p1", HeartRate: f(130)})
	require.NoError(t, err)
	assert.True(t, result.Escalated)

	updated := reloadProfile(t, db, "p1")
	require.NotNil(t, updated.AssignedDoctorID)
	assert.Equal(t, "d1", *updated.AssignedDoctorID)
}

func TestExportVitals_PermissionDenied(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	createPatient(t, db, "p1")

	_, err := svc.ExportVitals("stranger", "p1", nil, nil, ExportFormatJSON)
	require.Error(t, err)
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))
}

func TestExportVitals_InvalidFormat(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	createPatient(t, db, "p1")

	_, err := svc.ExportVitals("p1", "p1", nil, nil, "xml")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestExportVitals_DateRangeAndCSV(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	createPatient(t, db, "p1")

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		reading := models.VitalsReading{
			PatientID:  "p1",
			HeartRate:  f(70 + float64(i)),
			RecordedAt: base.AddDate(0, 0, i),
			DeviceID:   "dev-1",
		}
		require.NoError(t, db.Create(&reading).Error)
	}

	start := base.AddDate(0, 0, 1).Add(-time.Hour)
	result, err := svc.ExportVitals("p1", "p1", &start, nil, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	csvData, ok := result.Data.(string)
	require.True(t, ok)
	lines := strings.Split(strings.TrimSpace(csvData), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,deviceId,heartRate"))
	assert.Contains(t, lines[1], "71")
	assert.Contains(t, lines[2], "72")
}

func TestExportVitals_JSONDefault(t *testing.T) {
	db := setupTestDB(t)
	svc := newVitalsService(db)
	createPatient(t, db, "p1")

	reading := models.VitalsReading{PatientID: "p1", HeartRate: f(70), RecordedAt: time.Now()}
	require.NoError(t, db.Create(&reading).Error)

	result, err := svc.ExportVitals("p1", "p1", nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	readings, ok := result.Data.([]models.VitalsReading)
	require.True(t, ok)
	require.Len(t, readings, 1)
}
