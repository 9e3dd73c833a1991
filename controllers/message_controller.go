package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/middleware"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/coachline-hq/coachline-api/services"
	"github.com/gin-gonic/gin"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	MessageType     string  `json:"message_type"`
	Body            string  `json:"body"`
	AttachmentS3Key *string `json:"attachment_s3_key"`
}

// MarkReadRequest represents the request body for advancing the read cursor
type MarkReadRequest struct {
	LastReadID uint `json:"last_read_id" binding:"required"`
}

// ListNewMessages handles GET /api/v1/conversations/:id/messages - returns
// messages with id greater than the after_id cursor, ascending.
//
// This is the polling read path: each call is a stateless snapshot query, the
// client keeps the cursor. Two polls with the same cursor and no intervening
// writes return identical results, and nothing on this path ever writes.
func ListNewMessages(c *gin.Context) {
	db := config.GetDB()

	// Fetch the conversation
	var conversation models.Conversation
	if err := db.First(&conversation, c.Param("id")).Error; err != nil {
		c.PureJSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONVERSATION_NOT_FOUND",
				"message": "Conversation not found",
			},
		})
		return
	}

	// Parse the cursor; 0 means "from the beginning"
	afterID, err := strconv.ParseUint(c.DefaultQuery("after_id", "0"), 10, 64)
	if err != nil {
		c.PureJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "after_id must be a non-negative integer",
			},
		})
		return
	}

	var messages []models.Message
	if err := db.Where("conversation_id = ? AND id > ?", conversation.ID, afterID).
		Preload("Sender").
		Order("id ASC").
		Find(&messages).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch messages",
			},
		})
		return
	}

	// Attach presigned URLs for any attachments
	if s3 := services.GetS3Service(); s3 != nil {
		for i := range messages {
			if messages[i].AttachmentS3Key != nil {
				if url, err := s3.GetPresignedURL(*messages[i].AttachmentS3Key); err == nil && url != "" {
					messages[i].AttachmentURL = &url
				}
			}
		}
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}

// SendMessage handles POST /api/v1/conversations/:id/messages - sends an
// outbound message on a conversation. Exactly one row is created per call.
func SendMessage(c *gin.Context) {
	// Extract Auth0 user ID from JWT token
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.PureJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	// Find the user in the database
	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.PureJSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found",
			},
		})
		return
	}

	// Fetch the conversation
	var conversation models.Conversation
	if err := db.First(&conversation, c.Param("id")).Error; err != nil {
		c.PureJSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONVERSATION_NOT_FOUND",
				"message": "Conversation not found",
			},
		})
		return
	}

	// Parse request body
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.PureJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	// An all-whitespace body is rejected before anything is persisted
	body := strings.TrimSpace(req.Body)
	if body == "" {
		c.PureJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Message body must not be empty",
			},
		})
		return
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "sms"
	}

	// Create the message
	message := models.Message{
		ConversationID:  conversation.ID,
		SenderID:        &user.ID,
		Direction:       models.DirectionOutbound,
		MessageType:     messageType,
		Body:            body,
		Status:          models.MessageSent,
		AttachmentS3Key: req.AttachmentS3Key,
	}

	if err := db.Create(&message).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create message",
			},
		})
		return
	}

	// Load the sender relationship to return complete data
	if err := db.Preload("Sender").First(&message, message.ID).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load message details",
			},
		})
		return
	}

	c.PureJSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// MarkConversationRead handles POST /api/v1/conversations/:id/read - advances
// the operator's read cursor. The cursor only ever moves forward.
func MarkConversationRead(c *gin.Context) {
	db := config.GetDB()

	var conversation models.Conversation
	if err := db.First(&conversation, c.Param("id")).Error; err != nil {
		c.PureJSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONVERSATION_NOT_FOUND",
				"message": "Conversation not found",
			},
		})
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.PureJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "last_read_id is required",
			},
		})
		return
	}

	// Clamp to the newest message in the thread so a bogus cursor cannot
	// pre-mark messages that do not exist yet
	var maxID uint
	if err := db.Model(&models.Message{}).
		Where("conversation_id = ?", conversation.ID).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update read cursor",
			},
		})
		return
	}
	target := req.LastReadID
	if target > maxID {
		target = maxID
	}

	// Conditional update keeps the cursor monotonic under concurrent marks
	if err := db.Model(&models.Conversation{}).
		Where("id = ? AND last_read_id < ?", conversation.ID, target).
		Update("last_read_id", target).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update read cursor",
			},
		})
		return
	}

	// The badge total changed; drop the cached value
	if cache := services.GetUnreadCache(); cache != nil {
		cache.Invalidate(c.Request.Context())
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// GetUnreadCount handles GET /api/v1/messages/unread - returns the total
// number of inbound messages past each conversation's read cursor. Backed by
// a short-TTL cache to absorb the badge poll.
func GetUnreadCount(c *gin.Context) {
	cache := services.GetUnreadCache()
	if cache != nil {
		if count, ok := cache.GetUnreadTotal(c.Request.Context()); ok {
			c.PureJSON(http.StatusOK, gin.H{
				"success": true,
				"data":    gin.H{"unread": count},
			})
			return
		}
	}

	db := config.GetDB()
	var count int64
	if err := db.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("messages.direction = ? AND messages.id > conversations.last_read_id", models.DirectionInbound).
		Count(&count).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to count unread messages",
			},
		})
		return
	}

	if cache != nil {
		cache.SetUnreadTotal(c.Request.Context(), count)
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"unread": count},
	})
}
