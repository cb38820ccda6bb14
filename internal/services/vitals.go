package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vitalwatch-server/internal/apperr"
	"vitalwatch-server/internal/care"
	"vitalwatch-server/internal/models"
)

// VitalsService runs the anomaly pipeline for incoming readings and
// serves vitals export.
type VitalsService struct {
	DB         *gorm.DB
	Logger     *zap.Logger
	Thresholds care.Thresholds
	Escalation *EscalationService
}

// NewVitalsService creates a new VitalsService.
func NewVitalsService(db *gorm.DB, logger *zap.Logger, thresholds care.Thresholds, escalation *EscalationService) *VitalsService {
	return &VitalsService{DB: db, Logger: logger, Thresholds: thresholds, Escalation: escalation}
}

// IngestResult summarizes one pipeline run.
type IngestResult struct {
	ReadingID string               `json:"readingId"`
	Alerts    []models.Alert       `json:"alerts"`
	Status    models.PatientStatus `json:"status"`
	Escalated bool                 `json:"escalated"`
}

// IngestReading persists a canonical reading and runs the full
// pipeline: classify anomalies, record alerts, resolve the patient
// status, fan out notifications to the care team, and check automatic
// escalation for every high alert. The reading itself is stored even
// when no anomaly fires.
func (s *VitalsService) IngestReading(reading *models.VitalsReading) (*IngestResult, error) {
	if reading.PatientID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "patientId is required")
	}
	if !reading.HasAnyVital() {
		return nil, apperr.New(apperr.CodeInvalidArgument, "Reading contains no vital measurements")
	}
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now()
	}

	patient, profile, err := loadPatientWithProfile(s.DB, reading.PatientID)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Create(reading).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to store vitals reading")
	}

	candidates := care.Classify(reading, s.Thresholds)

	alerts := make([]models.Alert, 0, len(candidates))
	for _, candidate := range candidates {
		alert := models.Alert{
			PatientID: reading.PatientID,
			Title:     candidate.Title,
			Message:   candidate.Message,
			Severity:  candidate.Severity,
			ReadingID: reading.ID,
		}
		if err := s.DB.Create(&alert).Error; err != nil {
			return nil, apperr.Internal(err, "Failed to store alert")
		}
		alerts = append(alerts, alert)
	}

	newStatus := care.ResolveStatus(profile.Status, candidates)
	if newStatus != profile.Status {
		if err := s.DB.Model(&models.PatientProfile{}).
			Where("user_id = ?", reading.PatientID).
			Update("status", newStatus).Error; err != nil {
			return nil, apperr.Internal(err, "Failed to update patient status")
		}
		profile.Status = newStatus
	}

	for i := range alerts {
		if err := s.fanOut(patient, profile, &alerts[i]); err != nil {
			return nil, err
		}
	}

	escalated := false
	for i := range alerts {
		if alerts[i].Severity != models.SeverityHigh {
			continue
		}
		fired, err := s.Escalation.CheckAutoEscalation(profile, &alerts[i])
		if err != nil {
			return nil, err
		}
		if fired {
			escalated = true
			// Refresh the profile so later alerts in the same batch
			// see the newly assigned doctor.
			if _, refreshed, err := loadPatientWithProfile(s.DB, reading.PatientID); err == nil {
				profile = refreshed
			}
		}
	}

	if len(alerts) > 0 {
		s.Logger.Info("vitals reading produced alerts",
			zap.String("patientId", reading.PatientID),
			zap.Int("alerts", len(alerts)),
			zap.String("status", string(profile.Status)),
		)
	}

	return &IngestResult{
		ReadingID: reading.ID,
		Alerts:    alerts,
		Status:    profile.Status,
		Escalated: escalated,
	}, nil
}

// fanOut writes the alert notifications for the patient and both
// assigned providers.
func (s *VitalsService) fanOut(patient *models.User, profile *models.PatientProfile, alert *models.Alert) error {
	message := fmt.Sprintf("%s: %s", patient.FullName(), alert.Message)

	if err := notify(s.DB, profile.UserID, alert.Title, alert.Message, alert.Severity); err != nil {
		return err
	}
	if profile.AssignedCaretakerID != nil {
		if err := notify(s.DB, *profile.AssignedCaretakerID, alert.Title, message, alert.Severity); err != nil {
			return err
		}
	}
	if profile.AssignedDoctorID != nil {
		if err := notify(s.DB, *profile.AssignedDoctorID, alert.Title, message, alert.Severity); err != nil {
			return err
		}
	}
	return nil
}

// ExportFormat selects the export payload shape.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
)

// ExportResult carries an export payload. Data is a reading slice for
// JSON and a CSV document string otherwise.
type ExportResult struct {
	Data        interface{} `json:"data"`
	Count       int         `json:"count"`
	PatientName string      `json:"patientName"`
}

// ExportVitals returns a patient's readings in the requested range.
// The caller must be the patient or one of their assigned providers.
func (s *VitalsService) ExportVitals(actorID, patientID string, start, end *time.Time, format ExportFormat) (*ExportResult, error) {
	if format == "" {
		format = ExportFormatJSON
	}
	if format != ExportFormatJSON && format != ExportFormatCSV {
		return nil, apperr.Newf(apperr.CodeInvalidArgument, "Invalid export format %q", format)
	}

	patient, profile, err := loadPatientWithProfile(s.DB, patientID)
	if err != nil {
		return nil, err
	}
	if !isCareTeamMember(profile, actorID) {
		return nil, apperr.New(apperr.CodePermissionDenied, "Only the patient or their care team can export vitals")
	}

	query := s.DB.Where("patient_id = ?", patientID)
	if start != nil {
		query = query.Where("recorded_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("recorded_at <= ?", *end)
	}

	var readings []models.VitalsReading
	if err := query.Order("recorded_at asc").Find(&readings).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to query vitals readings")
	}

	result := &ExportResult{Count: len(readings), PatientName: patient.FullName()}
	if format == ExportFormatJSON {
		result.Data = readings
		return result, nil
	}

	csvData, err := readingsToCSV(readings)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to encode CSV export")
	}
	result.Data = csvData
	return result, nil
}

func readingsToCSV(readings []models.VitalsReading) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"timestamp", "deviceId", "heartRate", "bpSystolic", "bpDiastolic", "oxygenLevel", "temperature", "glucose", "respiration"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, r := range readings {
		row := []string{
			r.RecordedAt.Format(time.RFC3339),
			r.DeviceID,
			formatVital(r.HeartRate),
			formatVital(r.BloodPressureSys),
			formatVital(r.BloodPressureDia),
			formatVital(r.OxygenLevel),
			formatVital(r.Temperature),
			formatVital(r.Glucose),
			formatVital(r.Respiration),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}

func formatVital(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
