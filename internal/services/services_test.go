package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vitalwatch-server/internal/config"
	"vitalwatch-server/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func testCareConfig() config.CareConfig {
	return config.CareConfig{
		InvitationTTLDays:         7,
		EscalationWindowHours:     24,
		EscalationAlertThreshold:  2,
		NotificationRetentionDays: 30,
	}
}

func createPatient(t *testing.T, db *gorm.DB, id string, conditions ...string) (*models.User, *models.PatientProfile) {
	user := models.User{
		BaseModel: models.BaseModel{ID: id},
		Email:     id + "@example.com",
		FirstName: "Pat",
		LastName:  id,
		Role:      models.RolePatient,
	}
	require.NoError(t, db.Create(&user).Error)

	profile := models.PatientProfile{
		UserID:            id,
		Status:            models.StatusStable,
		ChronicConditions: conditions,
	}
	require.NoError(t, db.Create(&profile).Error)
	return &user, &profile
}

func createDoctor(t *testing.T, db *gorm.DB, id, specialization string, availability models.Availability) *models.User {
	user := models.User{
		BaseModel:      models.BaseModel{ID: id},
		Email:          id + "@example.com",
		FirstName:      "Doc",
		LastName:       id,
		Role:           models.RoleMedical,
		Specialization: specialization,
		Availability:   availability,
		MaxPatients:    50,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCaretaker(t *testing.T, db *gorm.DB, id string, certified bool, years int) *models.User {
	user := models.User{
		BaseModel:       models.BaseModel{ID: id},
		Email:           id + "@example.com",
		FirstName:       "Care",
		LastName:        id,
		Role:            models.RoleCaretaker,
		Certified:       certified,
		ExperienceYears: years,
		Availability:    models.AvailabilityAvailable,
		MaxPatients:     50,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func reloadProfile(t *testing.T, db *gorm.DB, patientID string) *models.PatientProfile {
	var profile models.PatientProfile
	require.NoError(t, db.Where("user_id = ?", patientID).First(&profile).Error)
	return &profile
}

func countNotifications(t *testing.T, db *gorm.DB, recipientID string) int64 {
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).Count(&count).Error)
	return count
}

func testLogger() *zap.Logger { return zap.NewNop() }
