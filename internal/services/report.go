package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vitalwatch-server/internal/apperr"
	"vitalwatch-server/internal/config"
	"vitalwatch-server/internal/models"
)

// ReportService generates the daily per-patient summaries and owns
// the notification retention sweep.
type ReportService struct {
	DB     *gorm.DB
	Logger *zap.Logger
	Cfg    config.CareConfig
}

// NewReportService creates a new ReportService.
func NewReportService(db *gorm.DB, logger *zap.Logger, cfg config.CareConfig) *ReportService {
	return &ReportService{DB: db, Logger: logger, Cfg: cfg}
}

// GenerateDailyReports writes one DailyReport per patient covering
// the calendar day before the given instant. Running it again for the
// same day replaces nothing; a second row is simply appended with the
// same date, so the job should run once per day.
func (s *ReportService) GenerateDailyReports(now time.Time) (int, error) {
	dayEnd := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayStart := dayEnd.AddDate(0, 0, -1)

	var patients []models.PatientProfile
	if err := s.DB.Find(&patients).Error; err != nil {
		return 0, apperr.Internal(err, "Failed to load patient profiles")
	}

	generated := 0
	for _, profile := range patients {
		var readingCount int64
		if err := s.DB.Model(&models.VitalsReading{}).
			Where("patient_id = ? AND recorded_at >= ? AND recorded_at < ?", profile.UserID, dayStart, dayEnd).
			Count(&readingCount).Error; err != nil {
			return generated, apperr.Internal(err, "Failed to count readings")
		}

		counts := map[models.Severity]int64{}
		for _, severity := range []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh} {
			var c int64
			if err := s.DB.Model(&models.Alert{}).
				Where("patient_id = ? AND severity = ? AND created_at >= ? AND created_at < ?", profile.UserID, severity, dayStart, dayEnd).
				Count(&c).Error; err != nil {
				return generated, apperr.Internal(err, "Failed to count alerts")
			}
			counts[severity] = c
		}

		report := models.DailyReport{
			PatientID:    profile.UserID,
			ReportDate:   dayStart,
			ReadingCount: int(readingCount),
			AlertsLow:    int(counts[models.SeverityLow]),
			AlertsMedium: int(counts[models.SeverityMedium]),
			AlertsHigh:   int(counts[models.SeverityHigh]),
			Status:       profile.Status,
		}
		if err := s.DB.Create(&report).Error; err != nil {
			return generated, apperr.Internal(err, "Failed to store daily report")
		}
		generated++
	}

	s.Logger.Info("daily reports generated",
		zap.Int("patients", generated),
		zap.Time("reportDate", dayStart),
	)
	return generated, nil
}

// CleanupReadNotifications removes read notifications older than the
// configured retention period. Returns the number of rows removed.
func (s *ReportService) CleanupReadNotifications(now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -s.Cfg.NotificationRetentionDays)
	result := s.DB.Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, apperr.Internal(result.Error, "Failed to clean up notifications")
	}
	if result.RowsAffected > 0 {
		s.Logger.Info("old read notifications removed", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}
