package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testWebhookToken = "test-webhook-token"

func newWebhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/webhooks/inbound", ReceiveInboundMessage)
	return r
}

func postInbound(r *gin.Engine, token string, payload map[string]interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/api/v1/webhooks/inbound", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Webhook-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReceiveInboundMessage(t *testing.T) {
	db := setupMessageTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{InboundWebhookToken: testWebhookToken})
	defer config.SetConfig(nil)

	conversation := models.Conversation{ContactName: "Sam Lee", ContactPhone: "+15550001111"}
	db.Create(&conversation)

	r := newWebhookRouter()
	w := postInbound(r, testWebhookToken, map[string]interface{}{
		"conversation_id": conversation.ID,
		"body":            "Running 10 min late",
	})

	assert.Equal(t, http.StatusCreated, w.Code, "webhook failed: %s", w.Body.String())

	var messages []models.Message
	db.Where("conversation_id = ?", conversation.ID).Find(&messages)
	assert.Len(t, messages, 1)
	assert.Equal(t, models.DirectionInbound, messages[0].Direction)
	assert.Equal(t, models.MessageDelivered, messages[0].Status)
	assert.Nil(t, messages[0].SenderID)
	assert.Equal(t, "sms", messages[0].MessageType)
}

func TestReceiveInboundMessageCreatesConversation(t *testing.T) {
	db := setupMessageTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{InboundWebhookToken: testWebhookToken})
	defer config.SetConfig(nil)

	r := newWebhookRouter()

	// First contact from an unknown number opens a thread
	w := postInbound(r, testWebhookToken, map[string]interface{}{
		"contact_phone": "+15559998888",
		"contact_name":  "New Client",
		"body":          "Hi, do you have evening slots?",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var conversation models.Conversation
	err := db.Where("contact_phone = ?", "+15559998888").First(&conversation).Error
	assert.NoError(t, err)
	assert.Equal(t, "New Client", conversation.ContactName)

	// Second message from the same number lands in the same thread
	w = postInbound(r, testWebhookToken, map[string]interface{}{
		"contact_phone": "+15559998888",
		"body":          "Weekdays preferably",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.Conversation{}).Where("contact_phone = ?", "+15559998888").Count(&count)
	assert.Equal(t, int64(1), count)

	var messages int64
	db.Model(&models.Message{}).Where("conversation_id = ?", conversation.ID).Count(&messages)
	assert.Equal(t, int64(2), messages)
}

func TestReceiveInboundMessageValidation(t *testing.T) {
	db := setupMessageTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{InboundWebhookToken: testWebhookToken})
	defer config.SetConfig(nil)

	r := newWebhookRouter()

	// Blank body
	w := postInbound(r, testWebhookToken, map[string]interface{}{
		"contact_phone": "+15550001111",
		"body":          "   ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No thread identifier at all
	w = postInbound(r, testWebhookToken, map[string]interface{}{
		"body": "hello",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown conversation id
	w = postInbound(r, testWebhookToken, map[string]interface{}{
		"conversation_id": 999,
		"body":            "hello",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceiveInboundMessageTokenRequired(t *testing.T) {
	db := setupMessageTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{InboundWebhookToken: testWebhookToken})
	defer config.SetConfig(nil)

	r := newWebhookRouter()
	payload := map[string]interface{}{
		"contact_phone": "+15550001111",
		"body":          "hello",
	}

	w := postInbound(r, "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postInbound(r, "wrong-token", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Prefixes and extensions of the token are rejected too
	w = postInbound(r, testWebhookToken[:len(testWebhookToken)-1], payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = postInbound(r, testWebhookToken+"x", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A server without a configured token accepts nothing
	config.SetConfig(&config.Config{})
	w = postInbound(r, "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
