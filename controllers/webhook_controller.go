package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/coachline-hq/coachline-api/services"
	"github.com/gin-gonic/gin"
)

// InboundMessageRequest is what the external messaging channel posts when a
// contact replies. Either conversation_id or contact_phone identifies the thread.
type InboundMessageRequest struct {
	ConversationID *uint  `json:"conversation_id"`
	ContactPhone   string `json:"contact_phone"`
	ContactName    string `json:"contact_name"`
	MessageType    string `json:"message_type"`
	Body           string `json:"body"`
}

// ReceiveInboundMessage handles POST /api/v1/webhooks/inbound - records a
// message delivered by the external channel. Protected by a shared webhook
// token rather than a user JWT.
func ReceiveInboundMessage(c *gin.Context) {
	cfg := config.GetConfig()
	if cfg == nil || cfg.InboundWebhookToken == "" ||
		subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Webhook-Token")), []byte(cfg.InboundWebhookToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_WEBHOOK_TOKEN",
				"message": "Webhook token missing or invalid",
			},
		})
		return
	}

	var req InboundMessageRequest
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

	body := strings.TrimSpace(req.Body)
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Message body must not be empty",
			},
		})
		return
	}

	db := config.GetDB()

	// Resolve the conversation: by id when given, otherwise by phone,
	// creating the thread on first contact
	var conversation models.Conversation
	if req.ConversationID != nil {
		if err := db.First(&conversation, *req.ConversationID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONVERSATION_NOT_FOUND",
					"message": "Conversation not found",
				},
			})
			return
		}
	} else {
		if req.ContactPhone == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "conversation_id or contact_phone is required",
				},
			})
			return
		}
		if err := db.Where("contact_phone = ?", req.ContactPhone).First(&conversation).Error; err != nil {
			name := req.ContactName
			if name == "" {
				name = req.ContactPhone
			}
			conversation = models.Conversation{
				ContactName:  name,
				ContactPhone: req.ContactPhone,
			}
			if err := db.Create(&conversation).Error; err != nil {
				// Two first-contact deliveries can race; the unique index
				// on contact_phone rejects the loser, which then reuses
				// the thread the winner created
				if err := db.Where("contact_phone = ?", req.ContactPhone).First(&conversation).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"success": false,
						"error": gin.H{
							"code":    "DATABASE_ERROR",
							"message": "Failed to create conversation",
						},
					})
					return
				}
			}
		}
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "sms"
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       nil, // inbound messages have no operator sender
		Direction:      models.DirectionInbound,
		MessageType:    messageType,
		Body:           body,
		Status:         models.MessageDelivered,
	}
	if err := db.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record message",
			},
		})
		return
	}

	// New inbound message changes the badge total
	if cache := services.GetUnreadCache(); cache != nil {
		cache.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}
