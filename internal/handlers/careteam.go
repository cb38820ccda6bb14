package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vitalwatch-server/internal/care"
	"vitalwatch-server/internal/middleware"
	"vitalwatch-server/internal/models"
	"vitalwatch-server/internal/services"
	"vitalwatch-server/internal/utils"
)

// CareTeamHandler exposes the care-team assignment, escalation, and
// provider availability operations.
type CareTeamHandler struct {
	DB         *gorm.DB
	Assignment *services.AssignmentService
	Escalation *services.EscalationService
}

// NewCareTeamHandler creates a new CareTeamHandler.
func NewCareTeamHandler(db *gorm.DB, assignment *services.AssignmentService, escalation *services.EscalationService) *CareTeamHandler {
	return &CareTeamHandler{DB: db, Assignment: assignment, Escalation: escalation}
}

// AssignRequest represents the request body for assigning a care team member.
type AssignRequest struct {
	PatientID               string `json:"patientId" binding:"required,uuid"`
	CareTeamRole            string `json:"careTeamRole" binding:"required,oneof=doctor caretaker"`
	PreferredSpecialization string `json:"preferredSpecialization,omitempty"`
	Urgency                 string `json:"urgency,omitempty" binding:"omitempty,oneof=routine urgent"`
	AutoEscalate            *bool  `json:"autoEscalate,omitempty"`
}

// AssignCareTeamMember scores the provider pool and assigns the best
// match to the patient.
func (h *CareTeamHandler) AssignCareTeamMember(c *gin.Context) {
	var req AssignRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	result, err := h.Assignment.AssignCareTeamMember(actorID, services.AssignInput{
		PatientID:               req.PatientID,
		Role:                    models.CareTeamRole(req.CareTeamRole),
		PreferredSpecialization: req.PreferredSpecialization,
		Urgency:                 care.Urgency(req.Urgency),
		AutoEscalate:            req.AutoEscalate,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, result.Message, result)
}

// EscalateRequest represents the request body for a manual escalation.
type EscalateRequest struct {
	PatientID string `json:"patientId" binding:"required,uuid"`
	Reason    string `json:"reason,omitempty"`
}

// EscalateToDoctor requests doctor supervision for a patient. Returns
// early success when a doctor is already assigned.
func (h *CareTeamHandler) EscalateToDoctor(c *gin.Context) {
	var req EscalateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	result, err := h.Escalation.EscalateToDoctor(actorID, req.PatientID, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, result.Message, result)
}

// UpdateAvailabilityRequest represents the request body for a provider
// availability change.
type UpdateAvailabilityRequest struct {
	Availability string `json:"availability" binding:"required,oneof=available busy offline"`
}

// UpdateAvailability lets a provider set their own availability.
// Restricted to the medical and caretaker roles by route middleware.
func (h *CareTeamHandler) UpdateAvailability(c *gin.Context) {
	var req UpdateAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("availability", models.Availability(req.Availability)).Error; err != nil {
		utils.InternalServerError(c, "Failed to update availability: "+err.Error())
		return
	}

	utils.Success(c, "Availability updated", gin.H{"availability": req.Availability})
}
