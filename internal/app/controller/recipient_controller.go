package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
)

type RecipientController struct {
	recipientService service.RecipientService
}

func NewRecipientController(recipientService service.RecipientService) *RecipientController {
	return &RecipientController{
		recipientService: recipientService,
	}
}

type CreateRecipientRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// GetRecipients
// GET /api/recipients
func (ctrl *RecipientController) GetRecipients(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	recipients, err := ctrl.recipientService.ListRecipients(userID)
	if err != nil {
		respondError(c, err, "recipients")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipients": recipients,
	})
}

// CreateRecipient
// POST /api/recipients
func (ctrl *RecipientController) CreateRecipient(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid recipient data")
		return
	}

	recipient, err := ctrl.recipientService.CreateRecipient(userID, req.Name, req.Phone, req.Email)
	if err != nil {
		respondError(c, err, "create recipient")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"recipient": recipient,
	})
}
