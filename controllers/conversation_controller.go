package controllers

import (
	"net/http"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/gin-gonic/gin"
)

// CreateConversationRequest represents the request body for opening a conversation
type CreateConversationRequest struct {
	ContactName  string `json:"contact_name" binding:"required"`
	ContactPhone string `json:"contact_phone" binding:"required"`
}

// CreateConversation handles POST /api/v1/conversations - opens a thread with a contact
func CreateConversation(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()

	// Reuse an existing thread for the same phone number
	var existing models.Conversation
	if err := db.Where("contact_phone = ?", req.ContactPhone).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    existing,
		})
		return
	}

	conversation := models.Conversation{
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
	}
	if err := db.Create(&conversation).Error; err != nil {
		// A concurrent request may have created the thread between the
		// lookup and the insert; the unique index on contact_phone makes
		// this insert fail, so fall back to the winner's row
		if err := db.Where("contact_phone = ?", req.ContactPhone).First(&existing).Error; err == nil {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    existing,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create conversation",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    conversation,
	})
}

// ListConversations handles GET /api/v1/conversations - lists all threads
// with their unread counts, most recently active first
func ListConversations(c *gin.Context) {
	db := config.GetDB()

	var conversations []models.Conversation
	if err := db.Order("updated_at DESC").Find(&conversations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch conversations",
			},
		})
		return
	}

	for i := range conversations {
		var count int64
		if err := db.Model(&models.Message{}).
			Where("conversation_id = ? AND direction = ? AND id > ?",
				conversations[i].ID, models.DirectionInbound, conversations[i].LastReadID).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to count unread messages",
				},
			})
			return
		}
		conversations[i].UnreadCount = count
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conversations,
	})
}
