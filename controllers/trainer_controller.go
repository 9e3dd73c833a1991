package controllers

import (
	"net/http"
	"time"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SetTrainerStatusRequest represents the request body for the status override
type SetTrainerStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreatePayoutRequest represents the request body for creating a payout
type CreatePayoutRequest struct {
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
}

// ListTrainers handles GET /api/v1/trainers - lists trainer profiles,
// optionally filtered by status (admins only)
func ListTrainers(c *gin.Context) {
	db := config.GetDB()
	query := db.Order("created_at DESC")

	if raw := c.Query("status"); raw != "" {
		status := models.TrainerStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Unknown trainer status",
				},
			})
			return
		}
		query = query.Where("status = ?", status)
	}

	var trainers []models.Trainer
	if err := query.Find(&trainers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch trainers",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    trainers,
	})
}

// SetTrainerStatus handles PATCH /api/v1/trainers/:id/status - administrative
// status override, independent of the originating application's state
func SetTrainerStatus(c *gin.Context) {
	var req SetTrainerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "status is required",
			},
		})
		return
	}

	status := models.TrainerStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "status must be one of: approved, pending, inactive",
			},
		})
		return
	}

	db := config.GetDB()
	var trainer models.Trainer
	if err := db.First(&trainer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TRAINER_NOT_FOUND",
				"message": "Trainer not found",
			},
		})
		return
	}

	if err := db.Model(&trainer).Update("status", status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update trainer status",
			},
		})
		return
	}

	trainer.Status = status
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    trainer,
	})
}

// ListTrainerPayouts handles GET /api/v1/trainers/:id/payouts
func ListTrainerPayouts(c *gin.Context) {
	db := config.GetDB()

	var trainer models.Trainer
	if err := db.First(&trainer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TRAINER_NOT_FOUND",
				"message": "Trainer not found",
			},
		})
		return
	}

	var payouts []models.Payout
	if err := db.Where("trainer_id = ?", trainer.ID).
		Order("period_end DESC").
		Find(&payouts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch payouts",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payouts,
	})
}

// CreateTrainerPayout handles POST /api/v1/trainers/:id/payouts - aggregates
// the trainer's completed sessions in the period into a pending payout
func CreateTrainerPayout(c *gin.Context) {
	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "period_start and period_end are required",
			},
		})
		return
	}

	if !req.PeriodEnd.After(req.PeriodStart) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "period_end must be after period_start",
			},
		})
		return
	}

	db := config.GetDB()
	var trainer models.Trainer
	if err := db.First(&trainer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TRAINER_NOT_FOUND",
				"message": "Trainer not found",
			},
		})
		return
	}

	// Sum earnings over completed sessions in the window
	var sessions []models.Session
	if err := db.Where("trainer_id = ? AND status = ? AND scheduled_at >= ? AND scheduled_at < ?",
		trainer.ID, models.SessionCompleted, req.PeriodStart, req.PeriodEnd).
		Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch sessions",
			},
		})
		return
	}

	if len(sessions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_COMPLETED_SESSIONS",
				"message": "No completed sessions in the requested period",
			},
		})
		return
	}

	var amount float64
	for _, s := range sessions {
		amount += s.Rate * float64(s.DurationMinutes) / 60
	}

	payout := models.Payout{
		TrainerID:   trainer.ID,
		Reference:   uuid.NewString(),
		Amount:      amount,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Status:      models.PayoutPending,
	}
	if err := db.Create(&payout).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create payout",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    payout,
	})
}
