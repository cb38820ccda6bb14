package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vitalwatch-server/internal/middleware"
	"vitalwatch-server/internal/models"
	"vitalwatch-server/internal/utils"
)

// PatientHandler exposes the patient profile and its care settings.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

func (h *PatientHandler) loadProfile(c *gin.Context, patientID string) (*models.PatientProfile, bool) {
	var profile models.PatientProfile
	err := h.DB.Preload("User").First(&profile, "user_id = ?", patientID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &profile, true
}

// GetPatient returns a patient's profile. Visible to the patient
// themselves and to their assigned care team.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	profile, ok := h.loadProfile(c, patientID)
	if !ok {
		return
	}

	if actorID != patientID && !isAssignedTo(profile, actorID) {
		utils.Forbidden(c, "You are not part of this patient's care team")
		return
	}

	reason, err := profile.GetAssignmentReason()
	if err != nil {
		utils.InternalServerError(c, "Failed to decode assignment reason: "+err.Error())
		return
	}
	utils.Success(c, "Patient profile fetched successfully", gin.H{
		"userId":               profile.UserID,
		"status":               profile.Status,
		"chronicConditions":    profile.ChronicConditions,
		"assignedDoctorId":     profile.AssignedDoctorID,
		"assignedCaretakerId":  profile.AssignedCaretakerID,
		"autoEscalateToDoctor": profile.AutoEscalateToDoctor,
		"assignmentReason":     reason,
		"escalatedAt":          profile.EscalatedAt,
		"escalatedFrom":        profile.EscalatedFrom,
		"escalationReason":     profile.EscalationReason,
	})
}

// UpdateConditionsRequest carries a replacement chronic condition list.
type UpdateConditionsRequest struct {
	ChronicConditions []string `json:"chronicConditions" binding:"required"`
}

// UpdateConditions replaces the patient's chronic condition list.
// Only the patient or their assigned doctor may change it.
func (h *PatientHandler) UpdateConditions(c *gin.Context) {
	patientID := c.Param("patientId")

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateConditionsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, ok := h.loadProfile(c, patientID)
	if !ok {
		return
	}

	allowed := actorID == patientID ||
		(profile.AssignedDoctorID != nil && *profile.AssignedDoctorID == actorID)
	if !allowed {
		utils.Forbidden(c, "You are not authorized to update this patient's conditions")
		return
	}

	profile.ChronicConditions = req.ChronicConditions
	if err := h.DB.Save(profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update conditions: "+err.Error())
		return
	}

	utils.Success(c, "Chronic conditions updated successfully", gin.H{
		"chronicConditions": profile.ChronicConditions,
	})
}

// UpdateEscalationRequest toggles automatic doctor escalation.
type UpdateEscalationRequest struct {
	AutoEscalateToDoctor *bool `json:"autoEscalateToDoctor" binding:"required"`
}

// UpdateEscalation toggles the auto-escalation flag on a patient's
// profile. Only the patient or their assigned caretaker may change it.
func (h *PatientHandler) UpdateEscalation(c *gin.Context) {
	patientID := c.Param("patientId")

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateEscalationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, ok := h.loadProfile(c, patientID)
	if !ok {
		return
	}

	allowed := actorID == patientID ||
		(profile.AssignedCaretakerID != nil && *profile.AssignedCaretakerID == actorID)
	if !allowed {
		utils.Forbidden(c, "You are not authorized to change this patient's escalation setting")
		return
	}

	if err := h.DB.Model(profile).Update("auto_escalate_to_doctor", *req.AutoEscalateToDoctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update escalation setting: "+err.Error())
		return
	}

	utils.Success(c, "Escalation setting updated successfully", gin.H{
		"autoEscalateToDoctor": *req.AutoEscalateToDoctor,
	})
}

func isAssignedTo(profile *models.PatientProfile, actorID string) bool {
	for _, role := range []models.CareTeamRole{models.CareTeamRoleDoctor, models.CareTeamRoleCaretaker} {
		if id := profile.AssignedID(role); id != nil && *id == actorID {
			return true
		}
	}
	return false
}
