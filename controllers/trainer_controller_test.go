package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTrainerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Application{}, &models.Trainer{},
		&models.Session{}, &models.Payout{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func newTrainerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/trainers", ListTrainers)
	r.PATCH("/api/v1/trainers/:id/status", SetTrainerStatus)
	r.GET("/api/v1/trainers/:id/payouts", ListTrainerPayouts)
	r.POST("/api/v1/trainers/:id/payouts", CreateTrainerPayout)
	return r
}

func seedTrainer(t *testing.T, db *gorm.DB) models.Trainer {
	user := models.User{
		Auth0ID: "provisioned|seed",
		Name:    "Ana Diaz",
		Email:   "ana@x.com",
		Role:    "trainer",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	app := models.Application{
		FirstName: "Ana",
		LastName:  "Diaz",
		Email:     "ana@x.com",
		RoleType:  "trainer",
		Status:    models.ApplicationApproved,
	}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("Failed to create application: %v", err)
	}

	trainer := models.Trainer{
		UserID:        user.ID,
		ApplicationID: app.ID,
		Slug:          "ana-diaz",
		DisplayName:   "Ana Diaz",
		Email:         "ana@x.com",
		HourlyRate:    60,
		Status:        models.TrainerApproved,
	}
	if err := db.Create(&trainer).Error; err != nil {
		t.Fatalf("Failed to create trainer: %v", err)
	}
	return trainer
}

func TestSetTrainerStatus(t *testing.T) {
	db := setupTrainerTestDB(t)
	config.SetDB(db)

	trainer := seedTrainer(t, db)
	r := newTrainerRouter()

	tests := []struct {
		name           string
		status         string
		expectedStatus int
	}{
		{"set inactive", "inactive", http.StatusOK},
		{"set pending", "pending", http.StatusOK},
		{"set approved", "approved", http.StatusOK},
		{"unknown value rejected", "suspended", http.StatusBadRequest},
		{"empty value rejected", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := json.Marshal(map[string]interface{}{"status": tt.status})
			url := fmt.Sprintf("/api/v1/trainers/%d/status", trainer.ID)
			req, _ := http.NewRequest("PATCH", url, bytes.NewBuffer(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var refreshed models.Trainer
				db.First(&refreshed, trainer.ID)
				assert.Equal(t, models.TrainerStatus(tt.status), refreshed.Status)
			}
		})
	}

	// Unknown trainer
	payload, _ := json.Marshal(map[string]interface{}{"status": "inactive"})
	req, _ := http.NewRequest("PATCH", "/api/v1/trainers/999/status", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTrainerPayout(t *testing.T) {
	db := setupTrainerTestDB(t)
	config.SetDB(db)

	trainer := seedTrainer(t, db)
	r := newTrainerRouter()

	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// Two completed sessions inside the window, one outside, one cancelled
	sessions := []models.Session{
		{TrainerID: trainer.ID, ClientName: "A", ScheduledAt: periodStart.AddDate(0, 0, 3), DurationMinutes: 60, Rate: 60, Status: models.SessionCompleted},
		{TrainerID: trainer.ID, ClientName: "B", ScheduledAt: periodStart.AddDate(0, 0, 10), DurationMinutes: 30, Rate: 60, Status: models.SessionCompleted},
		{TrainerID: trainer.ID, ClientName: "C", ScheduledAt: periodStart.AddDate(0, -1, 0), DurationMinutes: 60, Rate: 60, Status: models.SessionCompleted},
		{TrainerID: trainer.ID, ClientName: "D", ScheduledAt: periodStart.AddDate(0, 0, 12), DurationMinutes: 60, Rate: 60, Status: models.SessionCancelled},
	}
	for i := range sessions {
		if err := db.Create(&sessions[i]).Error; err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"period_start": periodStart,
		"period_end":   periodEnd,
	})
	url := fmt.Sprintf("/api/v1/trainers/%d/payouts", trainer.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, "create payout failed: %s", w.Body.String())

	var response struct {
		Data models.Payout `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	// 60 min at $60/h plus 30 min at $60/h
	assert.Equal(t, 90.0, response.Data.Amount)
	assert.Equal(t, models.PayoutPending, response.Data.Status)
	assert.NotEmpty(t, response.Data.Reference)

	// Listing returns the new payout
	req, _ = http.NewRequest("GET", url, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Data []models.Payout `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	assert.Len(t, list.Data, 1)
}

func TestCreateTrainerPayoutValidation(t *testing.T) {
	db := setupTrainerTestDB(t)
	config.SetDB(db)

	trainer := seedTrainer(t, db)
	r := newTrainerRouter()

	// Period with no completed sessions
	payload, _ := json.Marshal(map[string]interface{}{
		"period_start": time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		"period_end":   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	url := fmt.Sprintf("/api/v1/trainers/%d/payouts", trainer.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Inverted period
	payload, _ = json.Marshal(map[string]interface{}{
		"period_start": time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		"period_end":   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	req, _ = http.NewRequest("POST", url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown trainer
	req, _ = http.NewRequest("POST", "/api/v1/trainers/999/payouts", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code) // inverted period fails before lookup
}

func TestListTrainersStatusFilter(t *testing.T) {
	db := setupTrainerTestDB(t)
	config.SetDB(db)

	trainer := seedTrainer(t, db)
	db.Model(&models.Trainer{}).Where("id = ?", trainer.ID).Update("status", models.TrainerInactive)
	r := newTrainerRouter()

	req, _ := http.NewRequest("GET", "/api/v1/trainers?status=inactive", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []models.Trainer `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Data, 1)

	req, _ = http.NewRequest("GET", "/api/v1/trainers?status=approved", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Data, 0)

	req, _ = http.NewRequest("GET", "/api/v1/trainers?status=bogus", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
