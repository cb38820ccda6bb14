package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vitalwatch-server/internal/middleware"
	"vitalwatch-server/internal/models"
	"vitalwatch-server/internal/services"
	"vitalwatch-server/internal/utils"
)

// VitalsHandler receives canonical readings from the device adapters
// and serves vitals export.
type VitalsHandler struct {
	DB     *gorm.DB
	Vitals *services.VitalsService
}

// NewVitalsHandler creates a new VitalsHandler.
func NewVitalsHandler(db *gorm.DB, vitals *services.VitalsService) *VitalsHandler {
	return &VitalsHandler{DB: db, Vitals: vitals}
}

// IngestReadingRequest represents one canonical vitals reading. Device
// adapters (Bluetooth GATT, platform health APIs, manual entry) all
// post this shape.
type IngestReadingRequest struct {
	PatientID        string   `json:"patientId" binding:"required,uuid"`
	DeviceID         string   `json:"deviceId,omitempty"`
	HeartRate        *float64 `json:"heartRate,omitempty"`
	BloodPressureSys *float64 `json:"bloodPressureSystolic,omitempty"`
	BloodPressureDia *float64 `json:"bloodPressureDiastolic,omitempty"`
	OxygenLevel      *float64 `json:"oxygenLevel,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	Glucose          *float64 `json:"glucose,omitempty"`
	Respiration      *float64 `json:"respiration,omitempty"`
	Timestamp        string   `json:"timestamp,omitempty"`
}

// IngestReading stores a reading and runs the anomaly pipeline.
// Patients may only submit readings for themselves; their assigned
// providers may submit on their behalf.
func (h *VitalsHandler) IngestReading(c *gin.Context) {
	var req IngestReadingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	reading := models.VitalsReading{
		PatientID:        req.PatientID,
		DeviceID:         req.DeviceID,
		HeartRate:        req.HeartRate,
		BloodPressureSys: req.BloodPressureSys,
		BloodPressureDia: req.BloodPressureDia,
		OxygenLevel:      req.OxygenLevel,
		Temperature:      req.Temperature,
		Glucose:          req.Glucose,
		Respiration:      req.Respiration,
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			utils.BadRequest(c, "Invalid timestamp format. Please use ISO 8601 format (YYYY-MM-DDTHH:MM:SSZ)")
			return
		}
		reading.RecordedAt = ts
	}

	// Patients submit their own readings; assigned providers may
	// submit on a patient's behalf.
	if actorID != req.PatientID {
		var profile models.PatientProfile
		if err := h.DB.Where("user_id = ?", req.PatientID).First(&profile).Error; err != nil {
			utils.NotFound(c, "Patient profile not found")
			return
		}
		isProvider := (profile.AssignedCaretakerID != nil && *profile.AssignedCaretakerID == actorID) ||
			(profile.AssignedDoctorID != nil && *profile.AssignedDoctorID == actorID)
		if !isProvider {
			utils.Forbidden(c, "You are not authorized to submit readings for this patient")
			return
		}
	}

	result, err := h.Vitals.IngestReading(&reading)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Reading recorded", result)
}

// ExportVitals returns a patient's readings, optionally bounded by
// startDate/endDate query parameters and rendered as json or csv.
func (h *VitalsHandler) ExportVitals(c *gin.Context) {
	patientID := c.Param("patientId")

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var start, end *time.Time
	if s := c.Query("startDate"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			utils.BadRequest(c, "Invalid startDate format. Please use ISO 8601 format")
			return
		}
		start = &t
	}
	if e := c.Query("endDate"); e != "" {
		t, err := time.Parse(time.RFC3339, e)
		if err != nil {
			utils.BadRequest(c, "Invalid endDate format. Please use ISO 8601 format")
			return
		}
		end = &t
	}

	format := services.ExportFormat(c.DefaultQuery("format", "json"))

	result, err := h.Vitals.ExportVitals(actorID, patientID, start, end, format)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Vitals exported successfully", result)
}

// ListAlerts returns the alert history for a patient, newest first.
// Access follows the same care-team rule as export.
func (h *VitalsHandler) ListAlerts(c *gin.Context) {
	patientID := c.Param("patientId")

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var profile models.PatientProfile
	if err := h.DB.Where("user_id = ?", patientID).First(&profile).Error; err != nil {
		utils.NotFound(c, "Patient profile not found")
		return
	}
	isSelf := actorID == patientID
	isProvider := (profile.AssignedCaretakerID != nil && *profile.AssignedCaretakerID == actorID) ||
		(profile.AssignedDoctorID != nil && *profile.AssignedDoctorID == actorID)
	if !isSelf && !isProvider {
		utils.Forbidden(c, "You are not authorized to view this patient's alerts")
		return
	}

	var alerts []models.Alert
	if err := h.DB.Where("patient_id = ?", patientID).Order("created_at desc").Limit(100).Find(&alerts).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch alerts: "+err.Error())
		return
	}

	utils.Success(c, "Alerts fetched successfully", alerts)
}
