package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vitalwatch-server/internal/middleware"
	"vitalwatch-server/internal/models"
	"vitalwatch-server/internal/services"
	"vitalwatch-server/internal/utils"
)

// InvitationHandler handles care-team invitation requests.
type InvitationHandler struct {
	DB          *gorm.DB
	Invitations *services.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(db *gorm.DB, invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{DB: db, Invitations: invitations}
}

// SendInvitationRequest represents the request body for sending an invitation.
type SendInvitationRequest struct {
	RecipientEmail string `json:"recipientEmail" binding:"required,email"`
	Type           string `json:"type" binding:"required,oneof=caretaker doctor"`
	Message        string `json:"message,omitempty"`
}

// SendInvitation creates a pending invitation to join the sender's
// care team.
func (h *InvitationHandler) SendInvitation(c *gin.Context) {
	var req SendInvitationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	senderID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	invitation, err := h.Invitations.Send(senderID, req.RecipientEmail, models.InvitationType(req.Type), req.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Invitation sent", gin.H{"invitationId": invitation.ID})
}

// RespondInvitationRequest represents the request body for responding
// to an invitation.
type RespondInvitationRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

// RespondToInvitation accepts or declines an invitation on behalf of
// its recipient.
func (h *InvitationHandler) RespondToInvitation(c *gin.Context) {
	invitationID := c.Param("id")

	var req RespondInvitationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Invitations.Respond(actorID, invitationID, services.RespondAction(req.Action)); err != nil {
		utils.RespondError(c, err)
		return
	}

	message := "Invitation accepted"
	if req.Action == "decline" {
		message = "Invitation declined"
	}
	utils.Success(c, message, gin.H{"success": true})
}

// ListInvitations returns invitations the caller has sent, plus
// pending ones addressed to their email.
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	var sent []models.Invitation
	if err := h.DB.Where("sender_id = ?", userID).Order("created_at desc").Find(&sent).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch invitations: "+err.Error())
		return
	}

	var received []models.Invitation
	if err := h.DB.Where("recipient_email = ? AND status = ?", user.Email, models.InvitationStatusPending).
		Order("created_at desc").Find(&received).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch invitations: "+err.Error())
		return
	}

	utils.Success(c, "Invitations fetched successfully", gin.H{
		"sent":     sent,
		"received": received,
	})
}
